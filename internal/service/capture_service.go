package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/snaplead-api/internal/capture"
	"github.com/phrazzld/snaplead-api/internal/config"
	"github.com/phrazzld/snaplead-api/internal/delivery"
	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/events"
	"github.com/phrazzld/snaplead-api/internal/platform/webhook"
	"github.com/phrazzld/snaplead-api/internal/redact"
	"github.com/phrazzld/snaplead-api/internal/store"
)

// ErrAnalysisFailed wraps analysis endpoint failures. The handler maps it to
// a retryable alert; the session is already back on the photo preview.
var ErrAnalysisFailed = errors.New("photo analysis failed")

// Analyzer is the analysis endpoint surface the service depends on.
type Analyzer interface {
	Analyze(ctx context.Context, req webhook.AnalyzeRequest) (*domain.AnalysisResult, error)
}

// Generator is the generation endpoints surface.
type Generator interface {
	GenerateStyle(ctx context.Context, req webhook.GenerateRequest) (string, error)
	GenerateIngredients(ctx context.Context, req webhook.GenerateRequest) (string, error)
}

// Uploader stores captured photos and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Rewriter freshens a stored fortune. Implementations must fall back to the
// input on failure; the service treats the result as always usable.
type Rewriter interface {
	Rewrite(ctx context.Context, fortune domain.Fortune) domain.Fortune
}

// Dispatcher runs the delivery sequence for one session.
type Dispatcher interface {
	Dispatch(ctx context.Context, p delivery.Payload)
}

// CaptureService orchestrates a kiosk session end to end. It owns the
// session manager and reacts to session events to drive the delivery
// barrier.
type CaptureService struct {
	sessions   *capture.Manager
	leads      store.LeadStore
	drinks     store.DrinkStore
	fortunes   store.FortuneStore
	analyzer   Analyzer
	generator  Generator
	uploader   Uploader
	rewriter   Rewriter
	dispatcher Dispatcher
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// CaptureServiceDeps bundles the collaborators of a CaptureService.
// Uploader and Rewriter are optional; everything else is required.
type CaptureServiceDeps struct {
	Leads      store.LeadStore
	Drinks     store.DrinkStore
	Fortunes   store.FortuneStore
	Analyzer   Analyzer
	Generator  Generator
	Uploader   Uploader
	Rewriter   Rewriter
	Dispatcher Dispatcher
	Emitter    events.EventEmitter
}

// NewCaptureService creates the capture service, its session manager, and
// registers it as the handler of session events.
func NewCaptureService(cfg config.KioskConfig, deps CaptureServiceDeps, logger *slog.Logger) (*CaptureService, error) {
	switch {
	case deps.Leads == nil:
		return nil, errors.New("lead store cannot be nil")
	case deps.Drinks == nil:
		return nil, errors.New("drink store cannot be nil")
	case deps.Fortunes == nil:
		return nil, errors.New("fortune store cannot be nil")
	case deps.Analyzer == nil:
		return nil, errors.New("analyzer cannot be nil")
	case deps.Generator == nil:
		return nil, errors.New("generator cannot be nil")
	case deps.Dispatcher == nil:
		return nil, errors.New("dispatcher cannot be nil")
	case deps.Emitter == nil:
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &CaptureService{
		leads:      deps.Leads,
		drinks:     deps.Drinks,
		fortunes:   deps.Fortunes,
		analyzer:   deps.Analyzer,
		generator:  deps.Generator,
		uploader:   deps.Uploader,
		rewriter:   deps.Rewriter,
		dispatcher: deps.Dispatcher,
		emitter:    deps.Emitter,
		logger:     logger.With(slog.String("component", "capture_service")),
	}
	s.sessions = capture.NewManager(cfg.ThankYouDelay, s.notifyJobTerminal, logger)

	if reg, ok := deps.Emitter.(interface{ RegisterHandler(events.EventHandler) }); ok {
		reg.RegisterHandler(s)
	}

	return s, nil
}

// Sessions exposes the session manager for the purge loop in main.
func (s *CaptureService) Sessions() *capture.Manager {
	return s.sessions
}

// notifyJobTerminal is threaded into every session's job tracker; it runs on
// the job's completion goroutine.
func (s *CaptureService) notifyJobTerminal(sessionID uuid.UUID, kind capture.JobKind) {
	event := events.NewSessionEvent(sessionID, events.CauseJobTerminal, string(kind))
	if err := s.emitter.EmitEvent(context.Background(), event); err != nil {
		s.logger.Warn("job terminal event emission failed",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
	}
}

// CreateSession starts a new session on the preferences screen.
func (s *CaptureService) CreateSession(ctx context.Context) capture.Snapshot {
	return s.sessions.Create().View()
}

// GetSession returns the current state of a session for client polling.
func (s *CaptureService) GetSession(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}
	return sess.View(), nil
}

// WizardAnswer carries one or more wizard step answers. Nil fields are left
// untouched, so each step posts only its own answer.
type WizardAnswer struct {
	Name              *string
	Gender            *domain.Gender
	CoffeePreference  *domain.CoffeePreference
	AlcoholPreference *domain.AlcoholPreference
}

// AnswerWizard applies wizard answers to a session on the preferences screen.
func (s *CaptureService) AnswerWizard(ctx context.Context, id uuid.UUID, answer WizardAnswer) (capture.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}

	err = sess.SetWizardAnswer(func(p *domain.Preferences) {
		if answer.Name != nil {
			p.Name = *answer.Name
		}
		if answer.Gender != nil {
			p.Gender = *answer.Gender
		}
		if answer.CoffeePreference != nil {
			p.CoffeePreference = *answer.CoffeePreference
		}
		if answer.AlcoholPreference != nil {
			p.AlcoholPreference = *answer.AlcoholPreference
		}
	})
	if err != nil {
		return capture.Snapshot{}, err
	}
	return sess.View(), nil
}

// CompleteWizard validates the answers and moves to the camera-ready screen.
func (s *CaptureService) CompleteWizard(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	return s.transition(id, func(sess *capture.Session) error { return sess.CompleteWizard() })
}

// EditPreferences returns from camera-ready to the wizard.
func (s *CaptureService) EditPreferences(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	return s.transition(id, func(sess *capture.Session) error { return sess.EditPreferences() })
}

// StartCamera activates the live camera.
func (s *CaptureService) StartCamera(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	return s.transition(id, func(sess *capture.Session) error { return sess.StartCamera() })
}

// CapturePhoto stores the shutter frame.
func (s *CaptureService) CapturePhoto(ctx context.Context, id uuid.UUID, photo []byte) (capture.Snapshot, error) {
	return s.transition(id, func(sess *capture.Session) error { return sess.CapturePhoto(photo) })
}

// Retake discards the photo and returns to the live camera.
func (s *CaptureService) Retake(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	return s.transition(id, func(sess *capture.Session) error { return sess.Retake() })
}

// AbortSession handles the customer walking away (closing the camera):
// everything resets to the preferences screen.
func (s *CaptureService) AbortSession(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}
	sess.Reset()
	return sess.View(), nil
}

// Analyze runs the analysis call for the captured photo. On success the
// session lands on the results screen with the drink and fortune lookups
// attached; on failure it returns to the photo preview with the failure flag
// set and ErrAnalysisFailed is returned.
func (s *CaptureService) Analyze(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}

	if err := sess.BeginAnalysis(); err != nil {
		return capture.Snapshot{}, err
	}
	snap := sess.View()

	analysis, err := s.analyzer.Analyze(ctx, webhook.AnalyzeRequest{
		Image:       snap.Photo,
		Preferences: snap.Preferences,
		Category:    snap.Category,
	})
	if err != nil {
		s.logger.Warn("analysis failed",
			slog.String("session_id", id.String()),
			slog.String("error", redact.Error(err)))
		if failErr := sess.FailAnalysis(); failErr != nil {
			return capture.Snapshot{}, failErr
		}
		return sess.View(), fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	drink := s.lookupDrink(ctx, analysis.Drink)
	fortune := s.lookupFortune(ctx, analysis.Mood)

	if err := sess.CompleteAnalysis(analysis, drink, fortune); err != nil {
		return capture.Snapshot{}, err
	}
	return sess.View(), nil
}

// lookupDrink fetches the menu row for the recommended drink. Misses and
// errors both degrade to "no drink details".
func (s *CaptureService) lookupDrink(ctx context.Context, name string) *domain.DrinkMenu {
	if name == "" {
		return nil
	}
	drink, err := s.drinks.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, store.ErrDrinkNotFound) {
			s.logger.Warn("drink lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return drink
}

// lookupFortune fetches the mood-matched fortune and runs it through the
// rewriter when one is configured.
func (s *CaptureService) lookupFortune(ctx context.Context, mood string) *domain.Fortune {
	if mood == "" {
		return nil
	}
	fortune, err := s.fortunes.GetByMood(ctx, mood)
	if err != nil {
		if !errors.Is(err, store.ErrFortuneNotFound) {
			s.logger.Warn("fortune lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}
	if s.rewriter != nil {
		rewritten := s.rewriter.Rewrite(ctx, *fortune)
		fortune = &rewritten
	}
	return fortune
}

// ProceedToContact advances to the contact form and fires both generation
// jobs, hiding their latency behind the customer's typing time.
func (s *CaptureService) ProceedToContact(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}
	if err := sess.ProceedToContact(); err != nil {
		return capture.Snapshot{}, err
	}

	s.startGenerationJobs(sess)
	return sess.View(), nil
}

// startGenerationJobs launches both jobs from a consistent snapshot. Start is
// idempotent per job, so handler re-entry cannot double-fire a request. The
// jobs run on background contexts: nothing cancels them, and results landing
// after a reset hit the replaced tracker where nobody is listening.
func (s *CaptureService) startGenerationJobs(sess *capture.Session) {
	snap := sess.View()

	req := webhook.GenerateRequest{
		Photo:       snap.Photo,
		Preferences: snap.Preferences,
		Category:    snap.Category,
		Analysis:    snap.Analysis,
	}
	if snap.Drink != nil {
		req.DrinkDescription = snap.Drink.Description
	}

	generate := func(ctx context.Context, kind capture.JobKind) (string, error) {
		if kind == capture.JobStyle {
			return s.generator.GenerateStyle(ctx, req)
		}
		return s.generator.GenerateIngredients(ctx, req)
	}

	tracker := sess.Jobs()
	for _, kind := range capture.JobKinds {
		tracker.Start(context.Background(), kind, generate)
	}
}

// SubmitContact validates and stores the contact details, persists the lead
// row, uploads the photo, and emits the readiness event that may open the
// delivery barrier. Lead persistence failure is surfaced; the photo upload is
// best-effort.
func (s *CaptureService) SubmitContact(ctx context.Context, id uuid.UUID, contact domain.Contact) (capture.Snapshot, error) {
	if err := contact.Validate(); err != nil {
		return capture.Snapshot{}, err
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}
	if err := sess.SubmitContact(contact); err != nil {
		return capture.Snapshot{}, err
	}
	snap := sess.View()

	lead, err := domain.NewLead(contact, domain.BuildLeadNotes(snap.Preferences))
	if err != nil {
		return capture.Snapshot{}, err
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return capture.Snapshot{}, fmt.Errorf("failed to persist lead: %w", err)
	}
	sess.SetLeadID(lead.ID)

	s.uploadPhoto(ctx, lead.ID, snap.Photo)

	event := events.NewSessionEvent(id, events.CauseContactSubmitted, "")
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("contact submitted event emission failed",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
	}

	return sess.View(), nil
}

// uploadPhoto pushes the captured photo to storage and records its public
// URL on the lead. Failures are logged and dropped.
func (s *CaptureService) uploadPhoto(ctx context.Context, leadID uuid.UUID, photo []byte) {
	if s.uploader == nil || len(photo) == 0 {
		return
	}

	url, err := s.uploader.Upload(ctx, leadID.String()+".jpg", photo, "image/jpeg")
	if err != nil {
		s.logger.Warn("photo upload failed",
			slog.String("lead_id", leadID.String()),
			slog.String("error", redact.Error(err)))
		return
	}
	if err := s.leads.UpdateImageURL(ctx, leadID, url); err != nil {
		s.logger.Warn("lead image URL update failed",
			slog.String("lead_id", leadID.String()),
			slog.String("error", err.Error()))
	}
}

// HandleEvent implements events.EventHandler. Every readiness change
// re-evaluates the delivery barrier; the session's one-shot guard guarantees
// at most one delivery run per customer.
func (s *CaptureService) HandleEvent(ctx context.Context, event *events.SessionEvent) error {
	sess, err := s.sessions.Get(event.SessionID)
	if err != nil {
		// The session may have been purged or reset; stale events are fine.
		return nil
	}

	if !sess.TryBeginDelivery() {
		return nil
	}

	s.logger.Info("delivery barrier opened",
		slog.String("session_id", event.SessionID.String()),
		slog.String("cause", string(event.Cause)))

	go s.runDelivery(sess)
	return nil
}

// runDelivery executes the delivery sequence and then moves the session to
// the response screen. It runs on its own goroutine with a background
// context; the triggering request has usually finished long before.
func (s *CaptureService) runDelivery(sess *capture.Session) {
	snap := sess.View()
	tracker := sess.Jobs()

	style := tracker.Result(capture.JobStyle)
	ingredients := tracker.Result(capture.JobIngredients)

	payload := delivery.Payload{
		Preferences:      snap.Preferences,
		Category:         snap.Category,
		Analysis:         snap.Analysis,
		StyleImage:       style,
		IngredientsImage: ingredients,
	}
	if snap.Contact != nil {
		payload.Contact = *snap.Contact
	}

	s.dispatcher.Dispatch(context.Background(), payload)

	responseImage := style
	if responseImage == "" {
		responseImage = ingredients
	}
	if err := sess.ShowResponse(responseImage); err != nil {
		s.logger.Warn("could not advance to response screen",
			slog.String("session_id", sess.ID().String()),
			slog.String("error", err.Error()))
	}
}

// Complete moves from the response screen to the thank-you screen and arms
// the reset timer for the next customer.
func (s *CaptureService) Complete(ctx context.Context, id uuid.UUID) (capture.Snapshot, error) {
	snap, err := s.transition(id, func(sess *capture.Session) error { return sess.Complete() })
	if err != nil {
		return capture.Snapshot{}, err
	}
	s.sessions.ScheduleReset(id)
	return snap, nil
}

// ListLeads returns captured leads newest-first for the operator.
func (s *CaptureService) ListLeads(ctx context.Context, limit, offset int) ([]*domain.Lead, error) {
	return s.leads.List(ctx, limit, offset)
}

// transition is the shared lookup-then-move helper for simple transitions.
func (s *CaptureService) transition(id uuid.UUID, move func(*capture.Session) error) (capture.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return capture.Snapshot{}, err
	}
	if err := move(sess); err != nil {
		return capture.Snapshot{}, err
	}
	return sess.View(), nil
}
