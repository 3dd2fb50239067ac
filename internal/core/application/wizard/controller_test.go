package wizard_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"expedition/internal/core/application/drafts"
	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewController(t *testing.T) {
	_, err := wizard.NewController(kernel.NewUUID(), wizard.Dependencies{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	for _, name := range []string{"resolver", "geocoder", "gateway", "quoter"} {
		assert.Contains(t, err.Error(), name)
	}

	_, err = wizard.NewController(kernel.UUID{}, newFixture(t).deps)
	require.Error(t, err)
}

func TestController_RequiresInitialize(t *testing.T) {
	c, err := wizard.NewController(kernel.NewUUID(), newFixture(t).deps)
	require.NoError(t, err)

	_, err = c.Advance(t.Context(), senderInput())
	require.ErrorIs(t, err, wizard.ErrNotInitialized)
	_, err = c.Retreat(t.Context())
	require.ErrorIs(t, err, wizard.ErrNotInitialized)
	assert.Nil(t, c.Draft())
}

func TestController_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, expedition.TransportNone).
		Return(resolvedRoute, nil).Once()
	f.gateway.On("Submit", mock.Anything, mock.MatchedBy(func(r ports.SubmissionRequest) bool {
		return r.Draft.Payment().Method == expedition.PaymentMobileMoney &&
			r.Draft.Stage() == expedition.StagePayment
	})).Return("TRK-2024-001", nil).Once()

	d, err := c.Advance(ctx, senderInput())
	require.NoError(t, err)
	assert.Equal(t, expedition.StageRecipient, d.Stage())
	assert.Equal(t, "699123456", d.Sender().Phone)

	d, err = c.Advance(ctx, recipientInput())
	require.NoError(t, err)
	assert.Nil(t, d.Pricing().BasePrice)

	d, err = c.Advance(ctx, parcelInput())
	require.NoError(t, err)
	assert.Equal(t, expedition.StageRoute, d.Stage())
	assert.Equal(t, int64(2100), *d.Pricing().BasePrice)
	assert.InDelta(t, 10, d.Route().DistanceKm, 0)
	assert.Equal(t, "Carrefour Bastos, Rue 1.234, Yaoundé, Centre, Cameroun", d.Route().DepartureLabel)
	assert.Equal(t, int64(1300), d.Pricing().TravelPrice)

	d, err = c.Advance(ctx, expedition.RouteInput{})
	require.NoError(t, err)
	assert.Equal(t, expedition.StageSignature, d.Stage())

	d, err = c.Advance(ctx, signatureInput())
	require.NoError(t, err)
	assert.Equal(t, expedition.StagePayment, d.Stage())

	d, err = c.Finalize(ctx, expedition.PaymentInput{Method: "mobileMoney", MobilePhone: "+237 699 12 34 56"})
	require.NoError(t, err)
	assert.Equal(t, expedition.StageConfirmation, d.Stage())
	assert.Equal(t, "TRK-2024-001", d.TrackingID())
	assert.Equal(t, int64(100), d.Pricing().OperatorFee)
	assert.Equal(t, int64(2100+1300+100), d.Pricing().Total())

	_, err = f.store.Load(ctx, drafts.Key(c.Session()))
	require.ErrorIs(t, err, errs.ErrObjectNotFound, "a confirmed draft is cleared from the store")

	_, err = c.Retreat(ctx)
	require.ErrorIs(t, err, expedition.ErrStageTransition)

	f.resolver.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestController_ValidationDoesNotMerge(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	before := c.Draft().Snapshot()

	in := senderInput()
	in.Phone = "12"
	in.LastName = ""
	_, err := c.Advance(t.Context(), in)

	var invalid *wizard.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, expedition.StageSender, invalid.Stage)
	assert.Equal(t, []string{"lastName", "phone"}, invalid.Fields.Fields())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.Equal(t, before, c.Draft().Snapshot())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ValidationFailures.WithLabelValues("Sender")), 0)
}

func TestController_StageGuards(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	ctx := t.Context()

	_, err := c.Advance(ctx, recipientInput())
	require.ErrorIs(t, err, expedition.ErrStageTransition)

	_, err = c.Advance(ctx, expedition.PaymentInput{Method: "cash"})
	require.ErrorIs(t, err, wizard.ErrFinalizeRequired)

	_, err = c.Finalize(ctx, expedition.PaymentInput{Method: "cash"})
	require.ErrorIs(t, err, expedition.ErrStageTransition)

	_, err = c.ResolveRoute(ctx)
	require.ErrorIs(t, err, expedition.ErrStageTransition)

	_, err = c.Retreat(ctx)
	require.ErrorIs(t, err, expedition.ErrStageTransition)

	_, err = c.Advance(ctx, nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestController_RouteMustResolveBeforeAdvancing(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	notFound := ports.NewResolutionError("destination not found", nil)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(expedition.Route{}, notFound).Once()
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(resolvedRoute, nil).Once()

	_, err := c.Advance(ctx, senderInput())
	require.NoError(t, err)
	_, err = c.Advance(ctx, recipientInput())
	require.NoError(t, err)

	d, err := c.Advance(ctx, parcelInput())
	require.ErrorIs(t, err, ports.ErrResolution)
	require.NotNil(t, d)
	assert.Equal(t, expedition.StageRoute, d.Stage())
	assert.Zero(t, d.Route().DistanceKm)
	assert.Zero(t, d.Pricing().TravelPrice)

	_, err = c.Advance(ctx, expedition.RouteInput{})
	var invalid *wizard.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"distanceKm"}, invalid.Fields.Fields())

	d, err = c.ResolveRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), d.Pricing().TravelPrice)

	d, err = c.Advance(ctx, expedition.RouteInput{})
	require.NoError(t, err)
	assert.Equal(t, expedition.StageSignature, d.Stage())
}

func TestController_TransportHint(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything,
		mock.MatchedBy(func(w ports.Waypoint) bool { return w.Label != "" }),
		mock.MatchedBy(func(w ports.Waypoint) bool { return w.Label == "Akwa, Boulevard de la Liberté, Douala, Littoral, Cameroun" }),
		expedition.TransportMotorbike,
	).Return(resolvedRoute, nil).Once()

	_, err := c.Advance(ctx, senderInput())
	require.NoError(t, err)
	_, err = c.Advance(ctx, recipientInput())
	require.NoError(t, err)
	in := parcelInput()
	in.TransportMethod = "motorbike"
	_, err = c.Advance(ctx, in)
	require.NoError(t, err)

	f.resolver.AssertExpectations(t)
}

func TestController_TransportHintChangeResolvesAgain(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, expedition.TransportMotorbike).
		Return(resolvedRoute, nil).Once()
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, expedition.TransportBike).
		Return(expedition.Route{DistanceKm: 4, DurationMinutes: 18}, nil).Once()

	_, err := c.Advance(ctx, senderInput())
	require.NoError(t, err)
	_, err = c.Advance(ctx, recipientInput())
	require.NoError(t, err)
	in := parcelInput()
	in.TransportMethod = "motorbike"
	d, err := c.Advance(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), d.Pricing().TravelPrice)

	_, err = c.Retreat(ctx)
	require.NoError(t, err)
	in.TransportMethod = "bike"
	d, err = c.Advance(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, expedition.StageRoute, d.Stage())
	assert.InDelta(t, 4, d.Route().DistanceKm, 0)
	assert.Equal(t, int64(820), d.Pricing().TravelPrice)
	f.resolver.AssertExpectations(t)
}

func TestController_ZeroDistanceRouteIsAFailure(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(expedition.Route{DistanceKm: 0, DurationMinutes: 0}, nil).Twice()

	_, err := c.Advance(ctx, senderInput())
	require.NoError(t, err)
	_, err = c.Advance(ctx, recipientInput())
	require.NoError(t, err)

	d, err := c.Advance(ctx, parcelInput())
	require.ErrorIs(t, err, ports.ErrResolution)
	require.NotNil(t, d)
	assert.Equal(t, expedition.StageRoute, d.Stage())
	assert.False(t, d.Route().IsResolved())

	_, err = c.ResolveRoute(ctx)
	require.ErrorIs(t, err, ports.ErrResolution)
	assert.False(t, c.Draft().Route().IsResolved())
	f.resolver.AssertExpectations(t)
}

func TestController_UseCurrentLocation(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	f.geocoder.On("Reverse", mock.Anything, mock.AnythingOfType("kernel.Coordinates")).Return(ports.Place{
		Label:    "Rue 1.750, Bastos, Yaoundé, Centre, Cameroun",
		Country:  "Cameroun",
		Region:   "Centre",
		City:     "Yaoundé",
		Address:  "Rue 1.750",
		Landmark: "Bastos",
	}, nil).Once()

	lat, lon := 3.8912, 11.5087
	in := expedition.SenderInput{
		PartyInput: expedition.PartyInput{
			FirstName: "Alice", LastName: "Mbarga", Phone: "699123456",
			Latitude: &lat, Longitude: &lon,
		},
		UseCurrentLocation: true,
	}

	d, err := c.Advance(t.Context(), in)

	require.NoError(t, err)
	sender := d.Sender()
	assert.True(t, sender.UsedCurrentLocation)
	assert.Equal(t, "Rue 1.750", sender.Address)
	assert.Equal(t, "Bastos", sender.Landmark)
	require.NotNil(t, sender.Coordinates)
	assert.InDelta(t, lat, sender.Coordinates.Latitude(), 1e-9)
	f.geocoder.AssertExpectations(t)
}

func TestController_ReverseGeocodingFailure(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	f.geocoder.On("Reverse", mock.Anything, mock.Anything).
		Return(ports.Place{}, context.DeadlineExceeded).Once()

	lat, lon := 3.8912, 11.5087
	in := expedition.SenderInput{
		PartyInput:         expedition.PartyInput{FirstName: "Alice", LastName: "Mbarga", Phone: "699123456", Latitude: &lat, Longitude: &lon},
		UseCurrentLocation: true,
	}
	_, err := c.Advance(t.Context(), in)

	require.ErrorIs(t, err, ports.ErrResolution)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, expedition.StageSender, c.Draft().Stage())
	assert.False(t, c.Busy())
}

func TestController_SubmissionFailureIsRecoverable(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(resolvedRoute, nil).Once()
	f.gateway.On("Submit", mock.Anything, mock.Anything).
		Return("", ports.NewSubmissionError(http.StatusServiceUnavailable, "maintenance", nil)).Once()
	f.gateway.On("Submit", mock.Anything, mock.Anything).Return("TRK-9", nil).Once()
	toPayment(t, c)

	_, err := c.Finalize(ctx, expedition.PaymentInput{Method: "cash"})

	var submissionErr *ports.SubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, http.StatusServiceUnavailable, submissionErr.HTTPStatus)
	assert.Equal(t, expedition.StagePayment, c.Draft().Stage())
	_, err = f.store.Load(ctx, drafts.Key(c.Session()))
	require.NoError(t, err, "a failed submission keeps the stored draft")
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Submissions.WithLabelValues("failed")), 0)

	d, err := c.Finalize(ctx, expedition.PaymentInput{Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "TRK-9", d.TrackingID())
}

func TestController_SubmissionTransportErrorIsWrapped(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(resolvedRoute, nil).Once()
	f.gateway.On("Submit", mock.Anything, mock.Anything).Return("", errors.New("connection reset")).Once()
	toPayment(t, c)

	_, err := c.Finalize(t.Context(), expedition.PaymentInput{Method: "recipientPays"})

	var submissionErr *ports.SubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.True(t, submissionErr.Retryable())
	assert.Equal(t, expedition.PaymentRecipientPays, c.Draft().Payment().Method)
}

func TestController_FinalizeValidatesPayment(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(resolvedRoute, nil).Once()
	toPayment(t, c)

	_, err := c.Finalize(t.Context(), expedition.PaymentInput{Method: "mobileMoney", MobilePhone: "222334455"})

	var invalid *wizard.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"mobilePhone"}, invalid.Fields.Fields())
	f.gateway.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestController_OperationsAreExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(expedition.Route{}, ports.NewResolutionError("timeout", nil)).Once()
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(resolvedRoute, nil).Once()

	for _, in := range []expedition.StageInput{senderInput(), recipientInput()} {
		_, err := c.Advance(ctx, in)
		require.NoError(t, err)
	}
	_, err := c.Advance(ctx, parcelInput())
	require.ErrorIs(t, err, ports.ErrResolution)

	var wg sync.WaitGroup
	var resolveErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, resolveErr = c.ResolveRoute(ctx)
	}()
	<-started

	assert.True(t, c.Busy())
	_, err = c.Advance(ctx, expedition.RouteInput{})
	require.ErrorIs(t, err, wizard.ErrOperationInProgress)
	_, err = c.ResolveRoute(ctx)
	require.ErrorIs(t, err, wizard.ErrOperationInProgress)

	d, err := c.Retreat(ctx)
	require.NoError(t, err, "navigating back is allowed during a call")
	assert.Equal(t, expedition.StagePackage, d.Stage())

	close(release)
	wg.Wait()

	require.ErrorIs(t, resolveErr, wizard.ErrDraftMoved)
	assert.Equal(t, expedition.StagePackage, c.Draft().Stage())
	assert.False(t, c.Draft().Route().IsResolved(), "a late route must not land on a draft that moved on")
	assert.False(t, c.Busy())
}

func TestController_AdvanceIsDeterministic(t *testing.T) {
	f := newFixture(t)
	first := f.controller(t)
	second := f.controller(t)

	a, err := first.Advance(t.Context(), senderInput())
	require.NoError(t, err)
	b, err := second.Advance(t.Context(), senderInput())
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestController_SavesOnEveryMutation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)

	_, err := c.Advance(ctx, senderInput())
	require.NoError(t, err)
	_, err = c.Advance(ctx, recipientInput())
	require.NoError(t, err)
	_, err = c.Retreat(ctx)
	require.NoError(t, err)

	restored, err := wizard.NewController(c.Session(), f.deps)
	require.NoError(t, err)
	d, err := restored.Initialize(ctx)

	require.NoError(t, err)
	assert.True(t, restored.Restored())
	assert.Equal(t, expedition.StageRecipient, d.Stage())
	assert.Equal(t, c.Draft().Snapshot(), d.Snapshot())
}

func TestController_PersistenceFailureDegradesToMemory(t *testing.T) {
	store := new(MockDraftStore)
	store.On("Load", mock.Anything, mock.Anything).Return(nil, errs.NewObjectNotFoundError("draft", "k")).Once()
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	f := newFixtureWithStore(t, store)
	c := f.controller(t)

	assert.True(t, c.MemoryOnly())
	d, err := c.Advance(t.Context(), senderInput())
	require.NoError(t, err, "a failing store never blocks the wizard")
	assert.Equal(t, expedition.StageRecipient, d.Stage())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PersistenceDegradations.WithLabelValues("initialize")), 0)
	store.AssertNumberOfCalls(t, "Save", 1)
}

func TestController_UnreadableDraftStartsOver(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	session := kernel.NewUUID()
	require.NoError(t, f.store.Save(ctx, drafts.Key(session), []byte(`{"version":42}`)))

	c, err := wizard.NewController(session, f.deps)
	require.NoError(t, err)
	d, err := c.Initialize(ctx)

	require.NoError(t, err)
	assert.False(t, c.Restored())
	assert.False(t, c.MemoryOnly())
	assert.Equal(t, expedition.StageSender, d.Stage())
}

func TestController_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(resolvedRoute, nil).Once()
	f.gateway.On("Submit", mock.Anything, mock.Anything).Return("TRK-1", nil).Once()
	toPayment(t, c)
	_, err := c.Finalize(ctx, expedition.PaymentInput{Method: "cash"})
	require.NoError(t, err)

	d, err := c.Reset(ctx)

	require.NoError(t, err)
	assert.Equal(t, expedition.StageSender, d.Stage())
	assert.Empty(t, d.TrackingID())
	assert.Nil(t, d.Pricing().BasePrice)
}

func TestController_PrefillSender(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)

	d, err := c.PrefillSender(t.Context(), expedition.Party{FirstName: "Alice", LastName: "Mbarga", Phone: "699123456"})

	require.NoError(t, err)
	assert.Equal(t, "Alice", d.Sender().FirstName)
	assert.Equal(t, expedition.StageSender, d.Stage())
}

func TestController_Nudge(t *testing.T) {
	f := newFixture(t)
	fired := make(chan kernel.UUID, 1)
	f.deps.Nudge = wizard.NudgePolicy{
		After: 10 * time.Millisecond,
		Fire:  func(session kernel.UUID) { fired <- session },
	}
	c := f.controller(t)
	f.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(resolvedRoute, nil).Once()
	f.gateway.On("Submit", mock.Anything, mock.Anything).Return("TRK-1", nil).Once()
	toPayment(t, c)

	_, err := c.Finalize(t.Context(), expedition.PaymentInput{Method: "cash"})
	require.NoError(t, err)

	select {
	case session := <-fired:
		assert.True(t, session.IsEqual(c.Session()))
	case <-time.After(time.Second):
		t.Fatal("nudge did not fire")
	}
}
