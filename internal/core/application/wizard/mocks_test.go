package wizard_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"expedition/internal/adapters/out/memory/draftstore"
	"expedition/internal/core/application/drafts"
	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/services/pricing"
	"expedition/internal/core/domain/services/validation"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResolver struct{ mock.Mock }

func (m *MockResolver) Resolve(
	ctx context.Context,
	origin, destination ports.Waypoint,
	hint expedition.TransportMethod,
) (expedition.Route, error) {
	args := m.Called(ctx, origin, destination, hint)
	return args.Get(0).(expedition.Route), args.Error(1)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Reverse(ctx context.Context, position kernel.Coordinates) (ports.Place, error) {
	args := m.Called(ctx, position)
	return args.Get(0).(ports.Place), args.Error(1)
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) Submit(ctx context.Context, request ports.SubmissionRequest) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

type MockDraftStore struct{ mock.Mock }

func (m *MockDraftStore) Save(ctx context.Context, key string, payload []byte) error {
	return m.Called(ctx, key, payload).Error(0)
}

func (m *MockDraftStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	payload, _ := args.Get(0).([]byte)
	return payload, args.Error(1)
}

func (m *MockDraftStore) Clear(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type fixture struct {
	deps     wizard.Dependencies
	store    *draftstore.Store
	resolver *MockResolver
	geocoder *MockGeocoder
	gateway  *MockGateway
	metrics  *metrics.Metrics
}

var engine = pricing.NewEngine()

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, draftstore.New())
}

func newFixtureWithStore(t *testing.T, store ports.DraftStore) *fixture {
	t.Helper()

	repo, err := drafts.NewRepository(store, engine)
	require.NoError(t, err)

	f := &fixture{
		resolver: new(MockResolver),
		geocoder: new(MockGeocoder),
		gateway:  new(MockGateway),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	if memory, ok := store.(*draftstore.Store); ok {
		f.store = memory
	}
	f.deps = wizard.Dependencies{
		Drafts:    repo,
		Resolver:  f.resolver,
		Geocoder:  f.geocoder,
		Gateway:   f.gateway,
		Quoter:    engine,
		Validator: validation.NewValidator(),
		Metrics:   f.metrics,
		Logger:    discardLogger(),
	}
	return f
}

func (f *fixture) controller(t *testing.T) *wizard.Controller {
	t.Helper()
	c, err := wizard.NewController(kernel.NewUUID(), f.deps)
	require.NoError(t, err)
	_, err = c.Initialize(t.Context())
	require.NoError(t, err)
	return c
}

var resolvedRoute = expedition.Route{DistanceKm: 10, DurationMinutes: 20}

func senderInput() expedition.SenderInput {
	return expedition.SenderInput{PartyInput: expedition.PartyInput{
		FirstName: "Alice",
		LastName:  "Mbarga",
		Phone:     "699 12 34 56",
		Country:   "Cameroun",
		Region:    "Centre",
		City:      "Yaoundé",
		Address:   "Rue 1.234",
		Landmark:  "Carrefour Bastos",
	}}
}

func recipientInput() expedition.RecipientInput {
	return expedition.RecipientInput{PartyInput: expedition.PartyInput{
		FirstName: "Bob",
		LastName:  "Etoa",
		Phone:     "677654321",
		Country:   "Cameroun",
		Region:    "Littoral",
		City:      "Douala",
		Address:   "Boulevard de la Liberté",
		Landmark:  "Akwa",
	}}
}

func parcelInput() expedition.ParcelInput {
	return expedition.ParcelInput{
		Photo:       &expedition.Photo{Inline: "data:image/png;base64,AAAA"},
		Designation: "Books",
		Weight:      "2",
	}
}

func signatureInput() expedition.SignatureInput {
	return expedition.SignatureInput{ImageData: "data:image/png;base64,SIGN"}
}

// toPayment walks c to the payment stage; the resolver must accept one call.
func toPayment(t *testing.T, c *wizard.Controller) {
	t.Helper()
	ctx := t.Context()
	for _, in := range []expedition.StageInput{
		senderInput(), recipientInput(), parcelInput(), expedition.RouteInput{}, signatureInput(),
	} {
		_, err := c.Advance(ctx, in)
		require.NoError(t, err, in.Stage().String())
	}
	require.Equal(t, expedition.StagePayment, c.Draft().Stage())
}
