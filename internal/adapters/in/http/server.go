// Package http exposes the shipment wizard and the quote preview over a JSON API
// served by echo.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// MaxPhotoBytes bounds a multipart photo upload.
const MaxPhotoBytes = 8 << 20

// SessionRegistry creates and opens wizard sessions.
type SessionRegistry interface {
	Create(ctx context.Context) (*wizard.Controller, error)
	Open(ctx context.Context, session kernel.UUID) (*wizard.Controller, error)
}

// Server handles the wizard API. Each session route opens the session controller
// and runs one controller operation.
type Server struct {
	sessions SessionRegistry

	getQuoteHandler        queries.GetQuoteQueryHandler
	getSessionDraftHandler queries.GetSessionDraftQueryHandler

	logger *slog.Logger
}

func NewServer(
	sessions SessionRegistry,
	getQuoteHandler queries.GetQuoteQueryHandler,
	getSessionDraftHandler queries.GetSessionDraftQueryHandler,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sessions:               sessions,
		getQuoteHandler:        getQuoteHandler,
		getSessionDraftHandler: getSessionDraftHandler,
		logger:                 logger.With("component", "http"),
	}
}

// Register mounts the health check and the /api/v1 routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/quotes", s.GetQuote)

	sessions := api.Group("/expeditions/sessions")
	sessions.POST("", s.CreateSession)
	sessions.GET("/:id", s.GetSession)
	sessions.DELETE("/:id", s.ResetSession)
	sessions.POST("/:id/sender", s.SubmitSender)
	sessions.POST("/:id/recipient", s.SubmitRecipient)
	sessions.POST("/:id/package", s.SubmitPackage)
	sessions.POST("/:id/route", s.ConfirmRoute)
	sessions.POST("/:id/route/resolve", s.ResolveRoute)
	sessions.POST("/:id/signature", s.SubmitSignature)
	sessions.POST("/:id/back", s.Retreat)
	sessions.POST("/:id/finalize", s.Finalize)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetQuote handles POST /api/v1/quotes - prices a package without a session.
func (s *Server) GetQuote(ctx echo.Context) error {
	var req QuoteRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}

	var parcel *expedition.ParcelInput
	if req.Package != nil {
		in := req.Package.input()
		parcel = &in
	}
	query, err := queries.NewGetQuoteQuery(parcel, req.DistanceKm, req.PaymentMethod)
	if err != nil {
		return s.fail(ctx, nil, err)
	}

	quote, err := s.getQuoteHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, nil, err)
	}
	return ctx.JSON(http.StatusOK, newQuoteResponse(quote))
}

// CreateSession handles POST /api/v1/expeditions/sessions - opens a session on a fresh draft.
func (s *Server) CreateSession(ctx echo.Context) error {
	var req CreateSessionRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}

	c, err := s.sessions.Create(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, nil, err)
	}

	draft := c.Draft()
	if req.SenderProfile != nil {
		profile, err := req.SenderProfile.input().Party()
		if err != nil {
			return s.fail(ctx, c, err)
		}
		if draft, err = c.PrefillSender(ctx.Request().Context(), profile); err != nil {
			return s.fail(ctx, c, err)
		}
	}
	return ctx.JSON(http.StatusCreated, newSessionResponse(c, draft))
}

// GetSession handles GET /api/v1/expeditions/sessions/:id - opens or restores a session.
func (s *Server) GetSession(ctx echo.Context) error {
	session, err := sessionID(ctx)
	if err != nil {
		return s.fail(ctx, nil, err)
	}
	query, err := queries.NewGetSessionDraftQuery(session)
	if err != nil {
		return s.fail(ctx, nil, err)
	}

	res, err := s.getSessionDraftHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, nil, err)
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		SessionID:  session.String(),
		Restored:   res.Restored,
		MemoryOnly: res.MemoryOnly,
		Draft:      res.Draft.Snapshot(),
	})
}

// ResetSession handles DELETE /api/v1/expeditions/sessions/:id - starts the draft over.
func (s *Server) ResetSession(ctx echo.Context) error {
	return s.run(ctx, func(c *wizard.Controller) (*expedition.Draft, error) {
		return c.Reset(ctx.Request().Context())
	})
}

func (s *Server) SubmitSender(ctx echo.Context) error {
	var req SenderRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}
	return s.advance(ctx, expedition.SenderInput{
		PartyInput:         req.input(),
		UseCurrentLocation: req.UseCurrentLocation,
	})
}

func (s *Server) SubmitRecipient(ctx echo.Context) error {
	var req PartyRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}
	return s.advance(ctx, expedition.RecipientInput{PartyInput: req.input()})
}

// SubmitPackage accepts either a JSON body with an inline photo or a multipart form
// carrying the photo as a file.
func (s *Server) SubmitPackage(ctx echo.Context) error {
	contentType := ctx.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		in, err := parcelFromForm(ctx)
		if err != nil {
			return s.fail(ctx, nil, err)
		}
		return s.advance(ctx, in)
	}

	var req ParcelRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}
	return s.advance(ctx, req.input())
}

// ConfirmRoute completes the route stage once the route is resolved.
func (s *Server) ConfirmRoute(ctx echo.Context) error {
	return s.advance(ctx, expedition.RouteInput{})
}

// ResolveRoute retries the resolution of the route.
func (s *Server) ResolveRoute(ctx echo.Context) error {
	return s.run(ctx, func(c *wizard.Controller) (*expedition.Draft, error) {
		return c.ResolveRoute(ctx.Request().Context())
	})
}

func (s *Server) SubmitSignature(ctx echo.Context) error {
	var req SignatureRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}
	return s.advance(ctx, expedition.SignatureInput{ImageData: req.ImageData})
}

func (s *Server) Retreat(ctx echo.Context) error {
	return s.run(ctx, func(c *wizard.Controller) (*expedition.Draft, error) {
		return c.Retreat(ctx.Request().Context())
	})
}

// Finalize submits the shipment with the chosen payment. The tracking id is in the
// returned draft.
func (s *Server) Finalize(ctx echo.Context) error {
	var req PaymentRequest
	if err := ctx.Bind(&req); err != nil {
		return s.badRequest(ctx)
	}
	return s.run(ctx, func(c *wizard.Controller) (*expedition.Draft, error) {
		return c.Finalize(ctx.Request().Context(), req.input())
	})
}

func (s *Server) advance(ctx echo.Context, input expedition.StageInput) error {
	return s.run(ctx, func(c *wizard.Controller) (*expedition.Draft, error) {
		return c.Advance(ctx.Request().Context(), input)
	})
}

// run opens the session of the request and applies op to its controller.
func (s *Server) run(ctx echo.Context, op func(*wizard.Controller) (*expedition.Draft, error)) error {
	session, err := sessionID(ctx)
	if err != nil {
		return s.fail(ctx, nil, err)
	}
	c, err := s.sessions.Open(ctx.Request().Context(), session)
	if err != nil {
		return s.fail(ctx, nil, err)
	}

	draft, err := op(c)
	if err != nil {
		return s.fail(ctx, c, err)
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(c, draft))
}

// fail writes the error response. When c is set the current session state is attached
// so the client can show it alongside the error.
func (s *Server) fail(ctx echo.Context, c *wizard.Controller, err error) error {
	res := errorResponse(err)
	if res.Code >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
	}
	if c != nil {
		if draft := c.Draft(); draft != nil {
			session := newSessionResponse(c, draft)
			res.Session = &session
		}
	}
	return ctx.JSON(res.Code, res)
}

func (s *Server) badRequest(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "Invalid request body",
	})
}

func sessionID(ctx echo.Context) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("session id", err)
	}
	return id, nil
}

func parcelFromForm(ctx echo.Context) (expedition.ParcelInput, error) {
	flag := func(name string) bool {
		switch strings.ToLower(ctx.FormValue(name)) {
		case "true", "on", "1":
			return true
		}
		return false
	}

	in := expedition.ParcelInput{
		Designation:       ctx.FormValue("designation"),
		Description:       ctx.FormValue("description"),
		Weight:            ctx.FormValue("weight"),
		Length:            ctx.FormValue("length"),
		Width:             ctx.FormValue("width"),
		Height:            ctx.FormValue("height"),
		Fragile:           flag("fragile"),
		Perishable:        flag("perishable"),
		Liquid:            flag("liquid"),
		Insured:           flag("insured"),
		DeclaredValue:     ctx.FormValue("declaredValue"),
		TransportMethod:   ctx.FormValue("transportMethod"),
		ExpressTier:       ctx.FormValue("expressTier"),
		PickupRequested:   flag("pickupRequested"),
		DeliveryRequested: flag("deliveryRequested"),
	}

	header, err := ctx.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		if inline := ctx.FormValue("photo"); inline != "" {
			in.Photo = &expedition.Photo{Inline: inline}
		}
		return in, nil
	}
	if err != nil {
		return in, errs.NewValueIsInvalidErrorWithCause("photo", err)
	}

	file, err := header.Open()
	if err != nil {
		return in, errs.NewValueIsInvalidErrorWithCause("photo", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxPhotoBytes+1))
	if err != nil {
		return in, errs.NewValueIsInvalidErrorWithCause("photo", err)
	}
	if len(data) > MaxPhotoBytes {
		return in, errs.NewValueIsOutOfRangeError("photo", len(data), 1, MaxPhotoBytes)
	}
	in.Photo = &expedition.Photo{Binary: data, ContentType: header.Header.Get(echo.HeaderContentType)}
	return in, nil
}
