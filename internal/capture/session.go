package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/snaplead-api/internal/domain"
)

// ErrInvalidTransition is returned when a transition method is called from a
// screen it does not accept. Hitting it indicates a confused client, not a
// broken session: the session stays on its current screen.
var ErrInvalidTransition = errors.New("invalid screen transition")

// Session holds all state for one customer walking through the kiosk. Every
// mutation goes through a named transition method that validates the current
// screen under the session lock, so the screen sequencing invariant (exactly
// one active screen) holds by construction.
type Session struct {
	id        uuid.UUID
	createdAt time.Time
	logger    *slog.Logger

	// notify is threaded into every JobTracker this session creates so job
	// completions can wake the delivery barrier.
	notify func(sessionID uuid.UUID, kind JobKind)

	mu             sync.Mutex
	screen         Screen
	prefs          domain.Preferences
	photo          []byte
	analysis       *domain.AnalysisResult
	analysisFailed bool
	drink          *domain.DrinkMenu
	fortune        *domain.Fortune
	contact        *domain.Contact
	leadID         uuid.UUID
	jobs           *JobTracker
	responseImage  string
	delivered      bool
	updatedAt      time.Time
}

// NewSession creates a session on the preferences screen with a fresh job
// tracker.
func NewSession(logger *slog.Logger, notify func(sessionID uuid.UUID, kind JobKind)) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	s := &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		updatedAt: time.Now().UTC(),
		logger:    logger.With(slog.String("session_id", id.String())),
		notify:    notify,
		screen:    ScreenPreferences,
	}
	s.jobs = s.newTracker()
	return s
}

// newTracker builds a JobTracker whose terminal callback carries this
// session's ID to the notify hook.
func (s *Session) newTracker() *JobTracker {
	var onTerminal func(JobKind)
	if s.notify != nil {
		notify, id := s.notify, s.id
		onTerminal = func(kind JobKind) { notify(id, kind) }
	}
	return NewJobTracker(s.logger, onTerminal)
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Screen returns the currently active screen.
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Jobs returns the session's current job tracker. Callers that hold the
// returned tracker across a session reset keep observing the abandoned jobs,
// which is exactly the stray-late-response behavior the flow wants.
func (s *Session) Jobs() *JobTracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs
}

// transitionErr builds an ErrInvalidTransition for the attempted move.
// Callers must hold s.mu.
func (s *Session) transitionErr(to Screen) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.screen, to)
}

// touch records the mutation time. Callers must hold s.mu.
func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

// SetWizardAnswer applies one wizard step's answer. Only valid while the
// preferences screen is active; answers are immutable afterwards (the
// customer must explicitly return via EditPreferences).
func (s *Session) SetWizardAnswer(apply func(p *domain.Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenPreferences {
		return fmt.Errorf("%w: wizard answers only accepted on %s (currently %s)",
			ErrInvalidTransition, ScreenPreferences, s.screen)
	}

	apply(&s.prefs)
	s.touch()
	return nil
}

// CompleteWizard validates the four answers and advances to the
// camera-ready screen.
func (s *Session) CompleteWizard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenPreferences {
		return s.transitionErr(ScreenCameraReady)
	}
	if err := s.prefs.Validate(); err != nil {
		return err
	}

	s.screen = ScreenCameraReady
	s.touch()
	return nil
}

// EditPreferences returns from the camera-ready screen to the wizard.
func (s *Session) EditPreferences() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenCameraReady {
		return s.transitionErr(ScreenPreferences)
	}

	s.screen = ScreenPreferences
	s.touch()
	return nil
}

// StartCamera activates the camera screen.
func (s *Session) StartCamera() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenCameraReady {
		return s.transitionErr(ScreenCameraActive)
	}

	s.screen = ScreenCameraActive
	s.touch()
	return nil
}

// CapturePhoto stores the shutter frame and advances to the photo preview.
func (s *Session) CapturePhoto(photo []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenCameraActive {
		return s.transitionErr(ScreenPhotoPreview)
	}
	if len(photo) == 0 {
		return errors.New("captured photo cannot be empty")
	}

	s.photo = photo
	s.screen = ScreenPhotoPreview
	s.touch()
	return nil
}

// Retake discards the captured photo and every result derived from it, then
// returns to the live camera.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenPhotoPreview && s.screen != ScreenCameraActive {
		return s.transitionErr(ScreenCameraActive)
	}

	s.photo = nil
	s.analysis = nil
	s.analysisFailed = false
	s.drink = nil
	s.fortune = nil
	s.responseImage = ""
	s.jobs = s.newTracker()
	s.screen = ScreenCameraActive
	s.touch()
	return nil
}

// BeginAnalysis advances from the photo preview to the analyzing screen.
func (s *Session) BeginAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenPhotoPreview {
		return s.transitionErr(ScreenAnalyzing)
	}

	s.analysisFailed = false
	s.screen = ScreenAnalyzing
	s.touch()
	return nil
}

// CompleteAnalysis records the analysis results (plus the optional drink and
// fortune lookups) and shows the results screen.
func (s *Session) CompleteAnalysis(analysis *domain.AnalysisResult, drink *domain.DrinkMenu, fortune *domain.Fortune) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenAnalyzing {
		return s.transitionErr(ScreenAnalysisResults)
	}

	s.analysis = analysis
	s.drink = drink
	s.fortune = fortune
	s.screen = ScreenAnalysisResults
	s.touch()
	return nil
}

// FailAnalysis returns to the photo preview with the failure flag set; the
// preview then offers "try again" and "proceed anyway".
func (s *Session) FailAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenAnalyzing {
		return s.transitionErr(ScreenPhotoPreview)
	}

	s.analysis = nil
	s.drink = nil
	s.fortune = nil
	s.analysisFailed = true
	s.screen = ScreenPhotoPreview
	s.touch()
	return nil
}

// ProceedToContact advances to the contact form, either from the results
// screen or, when analysis failed, straight from the photo preview
// ("proceed anyway", leaving the analysis absent).
func (s *Session) ProceedToContact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.screen == ScreenAnalysisResults:
	case s.screen == ScreenPhotoPreview && s.analysisFailed:
	default:
		return s.transitionErr(ScreenContactForm)
	}

	s.analysisFailed = false
	s.screen = ScreenContactForm
	s.touch()
	return nil
}

// SubmitContact stores validated contact details and advances to the
// processing screen. The caller validates the contact first.
func (s *Session) SubmitContact(contact domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenContactForm {
		return s.transitionErr(ScreenProcessing)
	}

	c := contact
	s.contact = &c
	s.screen = ScreenProcessing
	s.touch()
	return nil
}

// SetLeadID records the persisted lead row backing this session.
func (s *Session) SetLeadID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leadID = id
	s.touch()
}

// TryBeginDelivery atomically checks the delivery barrier: both jobs
// terminal, contact submitted, delivery not yet started. When all hold it
// flips the one-shot guard and returns true. The guard flips before any
// delivery work begins, so concurrent re-evaluations (job completions racing
// the contact submission) can never double-send.
func (s *Session) TryBeginDelivery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.delivered || s.contact == nil {
		return false
	}
	if !s.jobs.BothTerminal() {
		return false
	}

	s.delivered = true
	s.touch()
	return true
}

// ShowResponse records the generated image reference and advances from
// processing to the response screen.
func (s *Session) ShowResponse(imageRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenProcessing {
		return s.transitionErr(ScreenResponseImage)
	}

	s.responseImage = imageRef
	s.screen = ScreenResponseImage
	s.touch()
	return nil
}

// Complete advances from the response screen to the thank-you screen.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenResponseImage {
		return s.transitionErr(ScreenThankYou)
	}

	s.screen = ScreenThankYou
	s.touch()
	return nil
}

// Reset clears every per-customer field and returns to the preferences
// screen. Valid from any screen: it serves both the thank-you timer and the
// explicit abort (closing the camera). The job tracker is replaced, so any
// still-running generation call finishes against the old tracker and is
// ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = domain.Preferences{}
	s.photo = nil
	s.analysis = nil
	s.analysisFailed = false
	s.drink = nil
	s.fortune = nil
	s.contact = nil
	s.leadID = uuid.Nil
	s.responseImage = ""
	s.delivered = false
	s.jobs = s.newTracker()
	s.screen = ScreenPreferences
	s.touch()

	s.logger.Info("session reset for next customer")
}

// Snapshot is a consistent copy of the session state for rendering and for
// assembling external requests.
type Snapshot struct {
	ID             uuid.UUID
	Screen         Screen
	Preferences    domain.Preferences
	Category       domain.Category
	Photo          []byte
	Analysis       *domain.AnalysisResult
	AnalysisFailed bool
	Drink          *domain.DrinkMenu
	Fortune        *domain.Fortune
	Contact        *domain.Contact
	LeadID         uuid.UUID
	JobStatus      map[JobKind]JobStatus
	ResponseImage  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// View returns a snapshot of the session taken under the session lock.
// Pointer fields are copied so the snapshot stays stable after a reset.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	jobs := s.jobs
	snap := Snapshot{
		ID:             s.id,
		Screen:         s.screen,
		Preferences:    s.prefs,
		Category:       s.prefs.Category(),
		Photo:          s.photo,
		AnalysisFailed: s.analysisFailed,
		LeadID:         s.leadID,
		ResponseImage:  s.responseImage,
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
	if s.analysis != nil {
		a := *s.analysis
		snap.Analysis = &a
	}
	if s.drink != nil {
		d := *s.drink
		snap.Drink = &d
	}
	if s.fortune != nil {
		f := *s.fortune
		snap.Fortune = &f
	}
	if s.contact != nil {
		c := *s.contact
		snap.Contact = &c
	}
	s.mu.Unlock()

	snap.JobStatus = map[JobKind]JobStatus{
		JobStyle:       jobs.Status(JobStyle),
		JobIngredients: jobs.Status(JobIngredients),
	}
	return snap
}
