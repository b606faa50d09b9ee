package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/snaplead-api/internal/api/shared"
	"github.com/phrazzld/snaplead-api/internal/capture"
	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/service"
)

// maxPhotoUploadBytes caps the shutter frame upload. Kiosk captures are
// single JPEG frames; anything bigger is a misbehaving client.
const maxPhotoUploadBytes = 10 << 20

// CaptureService is the session orchestration surface the handler depends on.
type CaptureService interface {
	CreateSession(ctx context.Context) capture.Snapshot
	GetSession(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	AnswerWizard(ctx context.Context, id uuid.UUID, answer service.WizardAnswer) (capture.Snapshot, error)
	CompleteWizard(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	EditPreferences(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	StartCamera(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	CapturePhoto(ctx context.Context, id uuid.UUID, photo []byte) (capture.Snapshot, error)
	Retake(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	AbortSession(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	Analyze(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	ProceedToContact(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
	SubmitContact(ctx context.Context, id uuid.UUID, contact domain.Contact) (capture.Snapshot, error)
	Complete(ctx context.Context, id uuid.UUID) (capture.Snapshot, error)
}

// CaptureHandler handles the kiosk session endpoints.
type CaptureHandler struct {
	service CaptureService
	logger  *slog.Logger
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(service CaptureService, logger *slog.Logger) *CaptureHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptureHandler{
		service: service,
		logger:  logger.With(slog.String("component", "capture_handler")),
	}
}

// CreateSession handles POST /api/sessions requests.
func (h *CaptureHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap := h.service.CreateSession(r.Context())
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(snap))
}

// GetSession handles GET /api/sessions/{id} requests, used by the kiosk to
// poll for job progress and the delivery-driven screen change.
func (h *CaptureHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(snap))
}

// AnswerWizard handles POST /api/sessions/{id}/wizard requests.
func (h *CaptureHandler) AnswerWizard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req WizardAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	answer := service.WizardAnswer{Name: req.Name}
	if req.Gender != nil {
		g := domain.Gender(*req.Gender)
		answer.Gender = &g
	}
	if req.CoffeePreference != nil {
		c := domain.CoffeePreference(*req.CoffeePreference)
		answer.CoffeePreference = &c
	}
	if req.AlcoholPreference != nil {
		a := domain.AlcoholPreference(*req.AlcoholPreference)
		answer.AlcoholPreference = &a
	}

	snap, err := h.service.AnswerWizard(r.Context(), id, answer)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(snap))
}

// CompleteWizard handles POST /api/sessions/{id}/wizard/complete requests.
func (h *CaptureHandler) CompleteWizard(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.CompleteWizard)
}

// EditPreferences handles POST /api/sessions/{id}/preferences/edit requests.
func (h *CaptureHandler) EditPreferences(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.EditPreferences)
}

// StartCamera handles POST /api/sessions/{id}/camera/start requests.
func (h *CaptureHandler) StartCamera(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.StartCamera)
}

// CapturePhoto handles POST /api/sessions/{id}/photo requests. The kiosk
// sends the shutter frame either as a multipart "photo" file or as a JSON
// body with a data URL in "image".
func (h *CaptureHandler) CapturePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	photo, err := readPhoto(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if len(photo) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No photo data in request")
		return
	}

	snap, err := h.service.CapturePhoto(r.Context(), id, photo)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(snap))
}

// Retake handles POST /api/sessions/{id}/photo/retake requests.
func (h *CaptureHandler) Retake(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.Retake)
}

// AbortSession handles POST /api/sessions/{id}/abort requests, fired when the
// customer walks away and the kiosk returns to the start.
func (h *CaptureHandler) AbortSession(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.AbortSession)
}

// Analyze handles POST /api/sessions/{id}/analyze requests. The call blocks
// for the duration of the analysis webhook; on upstream failure the session
// is already back on the photo preview and the client gets a 502.
func (h *CaptureHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.Analyze)
}

// ProceedToContact handles POST /api/sessions/{id}/proceed requests.
func (h *CaptureHandler) ProceedToContact(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.ProceedToContact)
}

// SubmitContact handles POST /api/sessions/{id}/contact requests.
func (h *CaptureHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req ContactRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	snap, err := h.service.SubmitContact(r.Context(), id, domain.Contact{
		Email:    req.Email,
		WhatsApp: req.WhatsApp,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(snap))
}

// Complete handles POST /api/sessions/{id}/complete requests.
func (h *CaptureHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.service.Complete)
}

// simpleTransition runs a body-less transition endpoint.
func (h *CaptureHandler) simpleTransition(
	w http.ResponseWriter,
	r *http.Request,
	move func(ctx context.Context, id uuid.UUID) (capture.Snapshot, error),
) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	snap, err := move(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(snap))
}

// sessionID parses the {id} path parameter, responding with 400 on garbage.
func (h *CaptureHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// readPhoto extracts the photo bytes from either upload shape.
func readPhoto(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
			return nil, domain.ErrImageDataURLMalformed
		}
		file, _, err := r.FormFile("photo")
		if err != nil {
			return nil, domain.ErrImageDataURLMalformed
		}
		defer func() { _ = file.Close() }()
		return io.ReadAll(io.LimitReader(file, maxPhotoUploadBytes))
	}

	var body struct {
		Image string `json:"image"`
	}
	if err := shared.DecodeJSON(r, &body); err != nil {
		return nil, domain.ErrImageDataURLMalformed
	}
	data, _, err := domain.DecodeImageDataURL(body.Image)
	if err != nil {
		return nil, err
	}
	return data, nil
}
