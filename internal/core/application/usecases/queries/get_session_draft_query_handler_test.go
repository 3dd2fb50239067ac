package queries_test

import (
	"context"
	"testing"

	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/services/pricing"
	"expedition/internal/core/domain/services/validation"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSessionOpener struct{ mock.Mock }

func (m *MockSessionOpener) Open(ctx context.Context, session kernel.UUID) (*wizard.Controller, error) {
	args := m.Called(ctx, session)
	c, _ := args.Get(0).(*wizard.Controller)
	return c, args.Error(1)
}

type unusedResolver struct{}

func (unusedResolver) Resolve(context.Context, ports.Waypoint, ports.Waypoint, expedition.TransportMethod) (expedition.Route, error) {
	return expedition.Route{}, ports.NewResolutionError("unused", nil)
}

type unusedGeocoder struct{}

func (unusedGeocoder) Reverse(context.Context, kernel.Coordinates) (ports.Place, error) {
	return ports.Place{}, ports.NewResolutionError("unused", nil)
}

type unusedGateway struct{}

func (unusedGateway) Submit(context.Context, ports.SubmissionRequest) (string, error) {
	return "", ports.NewSubmissionError(0, "unused", nil)
}

func memoryDependencies() wizard.Dependencies {
	return wizard.Dependencies{
		Resolver:  unusedResolver{},
		Geocoder:  unusedGeocoder{},
		Gateway:   unusedGateway{},
		Quoter:    pricing.NewEngine(),
		Validator: validation.NewValidator(),
	}
}

func TestGetSessionDraftQueryHandler_Handle(t *testing.T) {
	ctx := t.Context()
	sessions, err := wizard.NewSessions(memoryDependencies(), 0)
	require.NoError(t, err)
	c, err := sessions.Create(ctx)
	require.NoError(t, err)

	h, err := queries.NewGetSessionDraftQueryHandler(sessions)
	require.NoError(t, err)
	q, err := queries.NewGetSessionDraftQuery(c.Session())
	require.NoError(t, err)

	got, err := h.Handle(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, expedition.StageSender, got.Draft.Stage())
	assert.Equal(t, expedition.DefaultCity, got.Draft.Sender().City)
	assert.False(t, got.Restored)
	assert.True(t, got.MemoryOnly)
}

func TestGetSessionDraftQueryHandler_Handle_UnknownSession(t *testing.T) {
	unknown := kernel.NewUUID()
	opener := new(MockSessionOpener)
	opener.On("Open", mock.Anything, unknown).
		Return(nil, errs.NewObjectNotFoundError("session", unknown.String())).Once()

	h, _ := queries.NewGetSessionDraftQueryHandler(opener)
	q, _ := queries.NewGetSessionDraftQuery(unknown)

	_, err := h.Handle(t.Context(), q)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	opener.AssertExpectations(t)
}

func TestGetSessionDraftQuery_Validation(t *testing.T) {
	_, err := queries.NewGetSessionDraftQuery(kernel.UUID{})
	require.Error(t, err)

	err = queries.GetSessionDraftQuery{}.Validate()
	require.ErrorIs(t, err, queries.ErrGetSessionDraftQueryIsNotConstructed)

	_, err = queries.NewGetSessionDraftQueryHandler(nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
