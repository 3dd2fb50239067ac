package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"expedition/internal/core/application/drafts"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/services/validation"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCallTimeout bounds every geocoding, routing and submission call.
const DefaultCallTimeout = 15 * time.Second

const tracerName = "expedition/internal/core/application/wizard"

// NudgePolicy configures the account-creation nudge armed after confirmation.
// A zero After disables it.
type NudgePolicy struct {
	After time.Duration
	Fire  func(session kernel.UUID)
}

// Dependencies are shared by every controller of a process.
type Dependencies struct {
	// Drafts persists drafts; nil keeps every session in memory.
	Drafts *drafts.Repository

	Resolver  ports.RouteResolver
	Geocoder  ports.ReverseGeocoder
	Gateway   ports.SubmissionGateway
	Quoter    expedition.Quoter
	Validator validation.Validator

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// CallTimeout bounds external calls; zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// ClientID is sent with submissions; empty for guests.
	ClientID string

	Nudge NudgePolicy
}

func (d Dependencies) withDefaults() (Dependencies, error) {
	if err := errors.Join(
		requireDependency("resolver", d.Resolver == nil),
		requireDependency("geocoder", d.Geocoder == nil),
		requireDependency("gateway", d.Gateway == nil),
		requireDependency("quoter", d.Quoter == nil),
	); err != nil {
		return Dependencies{}, err
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.CallTimeout <= 0 {
		d.CallTimeout = DefaultCallTimeout
	}
	return d, nil
}

func requireDependency(name string, missing bool) error {
	if missing {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

// Controller owns the draft of one session. Every mutation is validated first, applied
// to a copy and committed only when it fully succeeds, then saved.
//
// Example usage:
//
//	c, _ := wizard.NewController(kernel.NewUUID(), deps)
//	if _, err := c.Initialize(ctx); err != nil {
//	    return err
//	}
//	draft, err := c.Advance(ctx, expedition.SenderInput{PartyInput: sender})
//	var invalid *wizard.ValidationError
//	if errors.As(err, &invalid) {
//	    // show invalid.Fields next to the inputs
//	}
type Controller struct {
	session kernel.UUID
	deps    Dependencies
	logger  *slog.Logger
	tracer  trace.Tracer
	nudge   *Nudge

	mu         sync.Mutex
	draft      *expedition.Draft
	restored   bool
	busy       bool
	epoch      uint64
	memoryOnly bool
}

// NewController creates a controller for session. Call Initialize or Restore before
// any other operation.
func NewController(session kernel.UUID, deps Dependencies) (*Controller, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		session:    session,
		deps:       deps,
		logger:     deps.Logger.With("component", "wizard", "session", session.String()),
		tracer:     otel.Tracer(tracerName),
		memoryOnly: deps.Drafts == nil,
	}
	if deps.Nudge.After > 0 && deps.Nudge.Fire != nil {
		fire := deps.Nudge.Fire
		c.nudge = NewNudge(deps.Nudge.After, func() { fire(session) })
	}
	return c, nil
}

// Session returns the session id.
func (c *Controller) Session() kernel.UUID {
	return c.session
}

// Draft returns a copy of the current draft, nil before initialization.
func (c *Controller) Draft() *expedition.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return nil
	}
	return c.draft.Clone()
}

// Restored reports whether the draft was loaded from the store.
func (c *Controller) Restored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restored
}

// MemoryOnly reports whether the session no longer persists its draft.
func (c *Controller) MemoryOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memoryOnly
}

// Busy reports whether an external call is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Flush saves the draft of a session that fell back to memory. On success the session
// persists again. It is a no-op for a persisting session and once the shipment is
// confirmed.
//
// Returns:
//   - ErrOperationInProgress while an external call is in flight
//   - ErrNoDraftStore when the session was never backed by a store
//   - *ports.PersistenceError when the store still fails
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrOperationInProgress
	}
	if !c.memoryOnly || c.draft == nil || c.draft.Stage() == expedition.StageConfirmation {
		return nil
	}
	if c.deps.Drafts == nil {
		return ErrNoDraftStore
	}

	ctx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()
	if err := c.deps.Drafts.Save(ctx, c.session, c.draft); err != nil {
		return err
	}
	c.memoryOnly = false
	c.logger.InfoContext(ctx, "draft store reachable again, session persists", "stage", c.draft.Stage().String())
	return nil
}

// Close disarms the nudge.
func (c *Controller) Close() {
	c.nudge.Cancel()
}

// Initialize restores the stored draft of the session, or starts and saves a new one.
func (c *Controller) Initialize(ctx context.Context) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "Initialize")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge.Cancel()

	if draft := c.load(ctx); draft != nil {
		c.draft = draft
		c.restored = true
		c.epoch++
		return c.draft.Clone(), nil
	}

	c.draft = expedition.NewDraft()
	c.restored = false
	c.epoch++
	c.persist(ctx, "initialize")
	c.deps.Metrics.IncrementTransition("initialize", c.draft.Stage().String())
	return c.draft.Clone(), nil
}

// Restore loads the stored draft of the session.
//
// Returns:
//   - errs.ObjectNotFoundError when nothing is stored or the session is memory-only
//   - *ports.PersistenceError when the store cannot be read
func (c *Controller) Restore(ctx context.Context) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "Restore")
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deps.Drafts == nil {
		err = errs.NewObjectNotFoundError("session", c.session.String())
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()
	var draft *expedition.Draft
	draft, err = c.deps.Drafts.Load(loadCtx, c.session)
	if err != nil {
		return nil, err
	}

	c.draft = draft
	c.restored = true
	c.epoch++
	return c.draft.Clone(), nil
}

// PrefillSender fills the sender from a known profile while the draft is on the
// sender stage.
func (c *Controller) PrefillSender(ctx context.Context, profile expedition.Party) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "PrefillSender")
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.ready(); err != nil {
		return nil, err
	}
	next := c.draft.Clone()
	if err = next.PrefillSender(profile); err != nil {
		return nil, err
	}
	c.commit(ctx, next, "prefill")
	return c.draft.Clone(), nil
}

// Advance validates input against the current stage and, when valid, merges it and
// moves one stage forward. Invalid input returns *ValidationError and leaves the
// draft untouched.
//
// The sender "use my location" shortcut reverse geocodes the coordinates before
// merging. Completing the package stage resolves the route right away: when that
// resolution fails the draft is returned along with the *ports.ResolutionError and
// stays on the route stage.
func (c *Controller) Advance(ctx context.Context, input expedition.StageInput) (*expedition.Draft, error) {
	if input == nil {
		return nil, errs.NewValueIsRequiredError("input")
	}
	ctx, span := c.startSpan(ctx, "Advance", attribute.String("expedition.input_stage", input.Stage().String()))
	draft, err := c.advance(ctx, input)
	endSpan(span, err)
	return draft, err
}

func (c *Controller) advance(ctx context.Context, input expedition.StageInput) (*expedition.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge.Cancel()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if input.Stage() == expedition.StagePayment {
		return nil, ErrFinalizeRequired
	}
	if input.Stage() != c.draft.Stage() {
		return nil, fmt.Errorf("%w: input completes %s, draft is on %s",
			expedition.ErrStageTransition, input.Stage(), c.draft.Stage())
	}
	if fields := c.deps.Validator.Validate(c.draft, input); len(fields) > 0 {
		c.deps.Metrics.IncrementValidationFailure(input.Stage().String())
		return nil, NewValidationError(input.Stage(), fields)
	}

	next := c.draft.Clone()
	var err error
	switch in := input.(type) {
	case expedition.SenderInput:
		err = c.applySender(ctx, next, in)
	case expedition.RecipientInput:
		var party expedition.Party
		if party, err = in.Party(); err == nil {
			err = next.CompleteRecipient(party, c.deps.Quoter)
		}
	case expedition.ParcelInput:
		var parcel expedition.Parcel
		if parcel, err = in.Parcel(); err == nil {
			err = next.CompletePackage(parcel, c.deps.Quoter)
		}
	case expedition.RouteInput:
		err = next.CompleteRoute()
	case expedition.SignatureInput:
		image := strings.TrimSpace(in.ImageData)
		err = next.CompleteSignature(expedition.Signature{ImageData: &image})
	default:
		err = errs.NewValueIsInvalidErrorWithCause("input", fmt.Errorf("unsupported input %T", input))
	}
	if err != nil {
		return nil, err
	}

	c.commit(ctx, next, "advance")

	if c.draft.Stage() == expedition.StageRoute && !c.draft.Route().IsResolved() {
		if _, err := c.resolveLocked(ctx); err != nil {
			return c.draft.Clone(), err
		}
	}
	return c.draft.Clone(), nil
}

// applySender is called with the lock held; it releases it while reverse geocoding.
func (c *Controller) applySender(ctx context.Context, next *expedition.Draft, in expedition.SenderInput) error {
	party, err := in.Party()
	if err != nil {
		return err
	}

	if in.UseCurrentLocation {
		epoch := c.beginCall()
		c.mu.Unlock()
		place, callErr := c.reverseGeocode(ctx, *party.Coordinates)
		c.mu.Lock()
		c.busy = false

		if callErr != nil {
			return callErr
		}
		if c.epoch != epoch {
			return ErrDraftMoved
		}
		party = withPlace(party, place)
	}

	return next.CompleteSender(party, c.deps.Quoter)
}

func withPlace(party expedition.Party, place ports.Place) expedition.Party {
	party.UsedCurrentLocation = true
	if place.Country != "" {
		party.Country = place.Country
	}
	party.Region = place.Region
	party.City = place.City
	party.Address = place.Address
	if party.Address == "" {
		party.Address = place.Label
	}
	party.Landmark = place.Landmark
	return party
}

// Retreat moves one stage back, keeping what was entered. It is allowed while an
// external call is in flight; that call's result is then discarded.
func (c *Controller) Retreat(ctx context.Context) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "Retreat")
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge.Cancel()

	if c.draft == nil {
		err = ErrNotInitialized
		return nil, err
	}
	next := c.draft.Clone()
	if err = next.Retreat(); err != nil {
		return nil, err
	}
	c.commit(ctx, next, "retreat")
	return c.draft.Clone(), nil
}

// Reset discards the draft, clears the store and starts over on the sender stage.
// It is the only way out of the confirmation stage.
func (c *Controller) Reset(ctx context.Context) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "Reset")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge.Cancel()

	c.clear(ctx)
	c.commit(ctx, expedition.NewDraft(), "reset")
	return c.draft.Clone(), nil
}

// ResolveRoute resolves the route between the sender and recipient locations and
// reprices the travel. The draft must be on the route stage.
//
// Returns:
//   - *ports.ResolutionError when a location cannot be found or no route exists
//   - ErrDraftMoved when the draft was retreated or reset during the call
func (c *Controller) ResolveRoute(ctx context.Context) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "ResolveRoute")
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge.Cancel()

	if err = c.ready(); err != nil {
		return nil, err
	}
	if c.draft.Stage() != expedition.StageRoute {
		err = fmt.Errorf("%w: route is resolved on %s, draft is on %s",
			expedition.ErrStageTransition, expedition.StageRoute, c.draft.Stage())
		return nil, err
	}

	var draft *expedition.Draft
	if draft, err = c.resolveLocked(ctx); err != nil {
		return nil, err
	}
	return draft, nil
}

// resolveLocked is called with the lock held; it releases it during the call.
func (c *Controller) resolveLocked(ctx context.Context) (*expedition.Draft, error) {
	sender, recipient := c.draft.Sender(), c.draft.Recipient()
	origin := ports.Waypoint{Label: sender.AddressLabel(), Coordinates: sender.Coordinates}
	destination := ports.Waypoint{Label: recipient.AddressLabel(), Coordinates: recipient.Coordinates}
	hint := c.draft.Parcel().TransportMethod

	epoch := c.beginCall()
	c.mu.Unlock()
	route, err := c.resolveRoute(ctx, origin, destination, hint)
	c.mu.Lock()
	c.busy = false

	if err != nil {
		c.logger.WarnContext(ctx, "route resolution failed", "error", err)
		return nil, err
	}
	if c.epoch != epoch || c.draft.Stage() != expedition.StageRoute {
		c.logger.InfoContext(ctx, "route discarded, draft moved on", "stage", c.draft.Stage().String())
		return nil, ErrDraftMoved
	}
	if !route.IsResolved() {
		err := ports.NewResolutionError("no usable route between the two locations", nil)
		c.logger.WarnContext(ctx, "route resolution failed", "error", err, "distance_km", route.DistanceKm)
		return nil, err
	}

	if route.DepartureLabel == "" {
		route.DepartureLabel = origin.Label
	}
	if route.ArrivalLabel == "" {
		route.ArrivalLabel = destination.Label
	}

	next := c.draft.Clone()
	if err := next.AttachRoute(route, c.deps.Quoter); err != nil {
		return nil, err
	}
	c.commit(ctx, next, "resolve")
	return c.draft.Clone(), nil
}

// Finalize records the payment choice, submits the draft and, once the backend
// returns a tracking id, moves to the confirmation stage and clears the store.
// A failed submission leaves the draft on the payment stage, ready to be retried.
//
// Returns:
//   - *ValidationError for an invalid payment input
//   - *ports.SubmissionError when the backend rejects or cannot be reached
//   - ErrDraftMoved when the draft was retreated or reset during the submission
func (c *Controller) Finalize(ctx context.Context, input expedition.PaymentInput) (*expedition.Draft, error) {
	ctx, span := c.startSpan(ctx, "Finalize", attribute.String("expedition.payment_method", input.Method))
	draft, err := c.finalize(ctx, input)
	endSpan(span, err)
	return draft, err
}

func (c *Controller) finalize(ctx context.Context, input expedition.PaymentInput) (*expedition.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge.Cancel()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if c.draft.Stage() != expedition.StagePayment {
		return nil, fmt.Errorf("%w: finalize needs %s, draft is on %s",
			expedition.ErrStageTransition, expedition.StagePayment, c.draft.Stage())
	}
	if fields := c.deps.Validator.Validate(c.draft, input); len(fields) > 0 {
		c.deps.Metrics.IncrementValidationFailure(expedition.StagePayment.String())
		return nil, NewValidationError(expedition.StagePayment, fields)
	}

	payment, err := input.Payment()
	if err != nil {
		return nil, err
	}
	next := c.draft.Clone()
	if err := next.SelectPayment(payment, c.deps.Quoter); err != nil {
		return nil, err
	}
	c.commit(ctx, next, "payment")

	candidate := c.draft.Clone()
	epoch := c.beginCall()
	c.mu.Unlock()
	trackingID, err := c.submit(ctx, candidate.Clone())
	c.mu.Lock()
	c.busy = false

	if err != nil {
		c.logger.WarnContext(ctx, "submission failed", "error", err)
		return nil, err
	}
	if c.epoch != epoch {
		c.logger.WarnContext(ctx, "submission succeeded after the draft moved on",
			"tracking_id", trackingID, "stage", c.draft.Stage().String())
		return nil, ErrDraftMoved
	}

	if err := candidate.Confirm(trackingID); err != nil {
		return nil, err
	}
	c.draft = candidate
	c.epoch++
	c.clear(ctx)
	c.deps.Metrics.IncrementTransition("finalize", c.draft.Stage().String())
	c.logger.InfoContext(ctx, "shipment submitted", "tracking_id", trackingID)
	c.nudge.Arm()
	return c.draft.Clone(), nil
}

func (c *Controller) ready() error {
	if c.draft == nil {
		return ErrNotInitialized
	}
	if c.busy {
		return ErrOperationInProgress
	}
	return nil
}

func (c *Controller) beginCall() uint64 {
	c.busy = true
	return c.epoch
}

// commit replaces the draft, bumps the epoch and saves.
func (c *Controller) commit(ctx context.Context, next *expedition.Draft, operation string) {
	previous := c.draft
	c.draft = next
	c.epoch++
	c.persist(ctx, operation)
	if previous == nil || previous.Stage() != next.Stage() {
		c.deps.Metrics.IncrementTransition(operation, next.Stage().String())
	}
}

func (c *Controller) load(ctx context.Context) *expedition.Draft {
	if c.deps.Drafts == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()

	draft, err := c.deps.Drafts.Load(ctx, c.session)
	var persistenceErr *ports.PersistenceError
	switch {
	case err == nil:
		return draft
	case errors.Is(err, errs.ErrObjectNotFound):
		return nil
	case errors.As(err, &persistenceErr) && persistenceErr.Op != "load":
		c.logger.WarnContext(ctx, "stored draft is unreadable, starting over", "error", err)
		return nil
	default:
		c.degrade(ctx, "load", err)
		return nil
	}
}

func (c *Controller) persist(ctx context.Context, operation string) {
	if c.memoryOnly {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.deps.CallTimeout)
	defer cancel()

	if err := c.deps.Drafts.Save(ctx, c.session, c.draft); err != nil {
		c.degrade(ctx, operation, err)
	}
}

func (c *Controller) clear(ctx context.Context) {
	if c.memoryOnly {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.deps.CallTimeout)
	defer cancel()

	if err := c.deps.Drafts.Clear(ctx, c.session); err != nil {
		c.degrade(ctx, "clear", err)
	}
}

func (c *Controller) degrade(ctx context.Context, operation string, err error) {
	c.memoryOnly = true
	c.deps.Metrics.IncrementPersistenceDegradation(operation)
	c.logger.WarnContext(ctx, "draft store failed, session continues in memory",
		"operation", operation, "error", err)
}

func (c *Controller) reverseGeocode(ctx context.Context, position kernel.Coordinates) (ports.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()

	start := time.Now()
	place, err := c.deps.Geocoder.Reverse(ctx, position)
	c.deps.Metrics.ObserveExternalCall("geocoder", err, time.Since(start))
	if err != nil && !errors.Is(err, ports.ErrResolution) {
		err = ports.NewResolutionError("reverse geocoding failed", err)
	}
	return place, err
}

func (c *Controller) resolveRoute(
	ctx context.Context,
	origin, destination ports.Waypoint,
	hint expedition.TransportMethod,
) (expedition.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()

	start := time.Now()
	route, err := c.deps.Resolver.Resolve(ctx, origin, destination, hint)
	c.deps.Metrics.ObserveExternalCall("router", err, time.Since(start))
	if err != nil && !errors.Is(err, ports.ErrResolution) {
		err = ports.NewResolutionError("route lookup failed", err)
	}
	return route, err
}

func (c *Controller) submit(ctx context.Context, draft *expedition.Draft) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()

	start := time.Now()
	trackingID, err := c.deps.Gateway.Submit(ctx, ports.SubmissionRequest{ClientID: c.deps.ClientID, Draft: draft})
	c.deps.Metrics.ObserveExternalCall("submission", err, time.Since(start))

	var submissionErr *ports.SubmissionError
	switch {
	case err == nil:
		c.deps.Metrics.IncrementSubmission("success")
	case errors.As(err, &submissionErr) && !submissionErr.Retryable():
		c.deps.Metrics.IncrementSubmission("rejected")
	default:
		c.deps.Metrics.IncrementSubmission("failed")
		if submissionErr == nil {
			err = ports.NewSubmissionError(0, "submission did not complete", err)
		}
	}
	return trackingID, err
}

func (c *Controller) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("expedition.session", c.session.String()))
	return c.tracer.Start(ctx, "wizard."+operation, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
