package capture

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/snaplead-api/internal/domain"
)

func validPrefs() domain.Preferences {
	return domain.Preferences{
		Name:              "Dina",
		Gender:            domain.GenderFemale,
		CoffeePreference:  domain.CoffeePreferenceCoffee,
		AlcoholPreference: domain.AlcoholPreferenceCocktail,
	}
}

// advanceTo walks a fresh session along the happy path until the target
// screen is active.
func advanceTo(t *testing.T, s *Session, target Screen) {
	t.Helper()

	steps := []struct {
		at   Screen
		move func() error
	}{
		{ScreenPreferences, func() error {
			if err := s.SetWizardAnswer(func(p *domain.Preferences) { *p = validPrefs() }); err != nil {
				return err
			}
			return s.CompleteWizard()
		}},
		{ScreenCameraReady, s.StartCamera},
		{ScreenCameraActive, func() error { return s.CapturePhoto([]byte("jpeg-bytes")) }},
		{ScreenPhotoPreview, s.BeginAnalysis},
		{ScreenAnalyzing, func() error {
			return s.CompleteAnalysis(&domain.AnalysisResult{Mood: "happy", Drink: "Espresso Martini"}, nil, nil)
		}},
		{ScreenAnalysisResults, s.ProceedToContact},
		{ScreenContactForm, func() error {
			return s.SubmitContact(domain.Contact{Email: "dina@example.com"})
		}},
		{ScreenProcessing, func() error { return s.ShowResponse("https://cdn.example.com/out.png") }},
		{ScreenResponseImage, s.Complete},
	}

	for _, step := range steps {
		if s.Screen() == target {
			return
		}
		require.Equal(t, step.at, s.Screen())
		require.NoError(t, step.move())
	}
	require.Equal(t, target, s.Screen())
}

func TestSessionHappyPath(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	assert.Equal(t, ScreenPreferences, s.Screen())

	advanceTo(t, s, ScreenThankYou)

	snap := s.View()
	assert.Equal(t, ScreenThankYou, snap.Screen)
	assert.Equal(t, domain.CategoryCoffeeCocktail, snap.Category)
	assert.Equal(t, "dina@example.com", snap.Contact.Email)
	assert.Equal(t, "https://cdn.example.com/out.png", snap.ResponseImage)
}

func TestSessionRejectsOutOfOrderTransitions(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)

	// None of these are reachable from the preferences screen.
	assert.ErrorIs(t, s.StartCamera(), ErrInvalidTransition)
	assert.ErrorIs(t, s.CapturePhoto([]byte("x")), ErrInvalidTransition)
	assert.ErrorIs(t, s.BeginAnalysis(), ErrInvalidTransition)
	assert.ErrorIs(t, s.ProceedToContact(), ErrInvalidTransition)
	assert.ErrorIs(t, s.SubmitContact(domain.Contact{Email: "a@b.co"}), ErrInvalidTransition)
	assert.ErrorIs(t, s.ShowResponse("img"), ErrInvalidTransition)
	assert.ErrorIs(t, s.Complete(), ErrInvalidTransition)

	// A rejected transition leaves the session where it was.
	assert.Equal(t, ScreenPreferences, s.Screen())
}

func TestSessionCompleteWizardRequiresAllAnswers(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	require.NoError(t, s.SetWizardAnswer(func(p *domain.Preferences) {
		p.Name = "Dina"
		p.Gender = domain.GenderFemale
	}))

	err := s.CompleteWizard()
	require.Error(t, err)
	assert.Equal(t, ScreenPreferences, s.Screen())

	require.NoError(t, s.SetWizardAnswer(func(p *domain.Preferences) {
		p.CoffeePreference = domain.CoffeePreferenceCoffee
		p.AlcoholPreference = domain.AlcoholPreferenceNonAlcohol
	}))
	require.NoError(t, s.CompleteWizard())
	assert.Equal(t, ScreenCameraReady, s.Screen())
}

func TestSessionEditPreferences(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	advanceTo(t, s, ScreenCameraReady)

	require.NoError(t, s.EditPreferences())
	assert.Equal(t, ScreenPreferences, s.Screen())

	// Answers survive the round trip; the customer edits, not restarts.
	assert.Equal(t, "Dina", s.View().Preferences.Name)
	require.NoError(t, s.CompleteWizard())
	assert.Equal(t, ScreenCameraReady, s.Screen())
}

func TestSessionRetakeDiscardsDerivedState(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	advanceTo(t, s, ScreenAnalysisResults)

	old := s.Jobs()
	old.Start(context.Background(), JobStyle, func(ctx context.Context, kind JobKind) (string, error) {
		return "stale", nil
	})

	// Back at the results screen the customer cannot retake, but from the
	// preview they can.
	require.ErrorIs(t, s.Retake(), ErrInvalidTransition)

	s2 := NewSession(nil, nil)
	advanceTo(t, s2, ScreenPhotoPreview)
	require.NoError(t, s2.BeginAnalysis())
	require.NoError(t, s2.FailAnalysis())
	require.NoError(t, s2.Retake())

	snap := s2.View()
	assert.Equal(t, ScreenCameraActive, snap.Screen)
	assert.Nil(t, snap.Photo)
	assert.Nil(t, snap.Analysis)
	assert.False(t, snap.AnalysisFailed)
	assert.Equal(t, JobStatusIdle, snap.JobStatus[JobStyle])
	assert.Equal(t, JobStatusIdle, snap.JobStatus[JobIngredients])

	// Preferences are kept across a retake.
	assert.Equal(t, "Dina", snap.Preferences.Name)
}

func TestSessionAnalysisFailureBranch(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	advanceTo(t, s, ScreenAnalyzing)

	require.NoError(t, s.FailAnalysis())
	snap := s.View()
	assert.Equal(t, ScreenPhotoPreview, snap.Screen)
	assert.True(t, snap.AnalysisFailed)
	assert.Nil(t, snap.Analysis)

	// "Proceed anyway" skips straight to the contact form with no analysis.
	require.NoError(t, s.ProceedToContact())
	snap = s.View()
	assert.Equal(t, ScreenContactForm, snap.Screen)
	assert.False(t, snap.AnalysisFailed)
	assert.Nil(t, snap.Analysis)
}

func TestSessionProceedAnywayOnlyAfterFailure(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	advanceTo(t, s, ScreenPhotoPreview)

	// Without a failed analysis the preview only offers analyze or retake.
	assert.ErrorIs(t, s.ProceedToContact(), ErrInvalidTransition)
	assert.Equal(t, ScreenPhotoPreview, s.Screen())
}

func TestSessionDeliveryBarrierFiresOnceInAnyOrder(t *testing.T) {
	t.Parallel()

	type ready func(t *testing.T, s *Session)

	contact := func(t *testing.T, s *Session) {
		require.NoError(t, s.SubmitContact(domain.Contact{Email: "dina@example.com"}))
	}
	finish := func(kind JobKind, image string, genErr error) ready {
		return func(t *testing.T, s *Session) {
			s.Jobs().Start(context.Background(), kind, func(ctx context.Context, k JobKind) (string, error) {
				return image, genErr
			})
			_, err := s.Jobs().Await(context.Background(), kind)
			require.NoError(t, err)
		}
	}

	orders := [][]ready{
		{contact, finish(JobStyle, "a", nil), finish(JobIngredients, "b", nil)},
		{contact, finish(JobIngredients, "b", nil), finish(JobStyle, "a", nil)},
		{finish(JobStyle, "a", nil), contact, finish(JobIngredients, "b", nil)},
		{finish(JobIngredients, "b", nil), contact, finish(JobStyle, "a", nil)},
		{finish(JobStyle, "a", nil), finish(JobIngredients, "b", nil), contact},
		{finish(JobIngredients, "b", nil), finish(JobStyle, "a", nil), contact},
		// Failed jobs must still open the barrier once contact is in.
		{contact, finish(JobStyle, "", errors.New("boom")), finish(JobIngredients, "", errors.New("boom"))},
	}

	for i, order := range orders {
		s := NewSession(nil, nil)
		advanceTo(t, s, ScreenContactForm)

		fired := 0
		for _, step := range order {
			step(t, s)
			// The barrier is re-evaluated after every readiness change,
			// exactly as the event handler does in production.
			for s.TryBeginDelivery() {
				fired++
			}
		}
		assert.Equalf(t, 1, fired, "order %d: barrier must fire exactly once", i)
		assert.False(t, s.TryBeginDelivery(), "barrier must stay closed after firing")
	}
}

func TestSessionDeliveryBarrierNeedsContact(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	advanceTo(t, s, ScreenContactForm)

	for _, kind := range JobKinds {
		s.Jobs().Start(context.Background(), kind, func(ctx context.Context, k JobKind) (string, error) {
			return "img", nil
		})
		_, err := s.Jobs().Await(context.Background(), kind)
		require.NoError(t, err)
	}

	// Both jobs done, contact missing: no delivery.
	assert.False(t, s.TryBeginDelivery())
}

func TestSessionResetClearsEverything(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil)
	advanceTo(t, s, ScreenThankYou)
	old := s.Jobs()

	s.Reset()

	snap := s.View()
	assert.Equal(t, ScreenPreferences, snap.Screen)
	assert.Equal(t, domain.Preferences{}, snap.Preferences)
	assert.Nil(t, snap.Photo)
	assert.Nil(t, snap.Analysis)
	assert.Nil(t, snap.Contact)
	assert.Empty(t, snap.ResponseImage)
	assert.NotSame(t, old, s.Jobs(), "reset must replace the job tracker")

	// The barrier does not fire for a reset session even if the abandoned
	// jobs later complete.
	old.Start(context.Background(), JobStyle, func(ctx context.Context, k JobKind) (string, error) { return "late", nil })
	old.Start(context.Background(), JobIngredients, func(ctx context.Context, k JobKind) (string, error) { return "late", nil })
	for _, kind := range JobKinds {
		_, err := old.Await(context.Background(), kind)
		require.NoError(t, err)
	}
	assert.False(t, s.TryBeginDelivery())
}

// TestSessionScreenAlwaysSingleValued drives random transition attempts
// against a fresh session and checks after every step that the screen is
// exactly one of the known screens and that rejected moves left it unchanged.
func TestSessionScreenAlwaysSingleValued(t *testing.T) {
	t.Parallel()

	known := map[Screen]bool{
		ScreenPreferences: true, ScreenCameraReady: true, ScreenCameraActive: true,
		ScreenPhotoPreview: true, ScreenAnalyzing: true, ScreenAnalysisResults: true,
		ScreenContactForm: true, ScreenProcessing: true, ScreenResponseImage: true,
		ScreenThankYou: true,
	}

	rng := rand.New(rand.NewSource(1))
	s := NewSession(nil, nil)

	moves := []func() error{
		func() error {
			return s.SetWizardAnswer(func(p *domain.Preferences) { *p = validPrefs() })
		},
		s.CompleteWizard,
		s.EditPreferences,
		s.StartCamera,
		func() error { return s.CapturePhoto([]byte("frame")) },
		s.Retake,
		s.BeginAnalysis,
		func() error { return s.CompleteAnalysis(&domain.AnalysisResult{Mood: "calm"}, nil, nil) },
		s.FailAnalysis,
		s.ProceedToContact,
		func() error { return s.SubmitContact(domain.Contact{Email: "x@y.co"}) },
		func() error { return s.ShowResponse("img") },
		s.Complete,
		func() error { s.Reset(); return nil },
	}

	for i := 0; i < 2000; i++ {
		before := s.Screen()
		err := moves[rng.Intn(len(moves))]()
		after := s.Screen()

		require.Truef(t, known[after], "step %d: unknown screen %q", i, after)
		if err != nil {
			// Rejected moves (invalid transitions or validation failures)
			// must leave the session where it was.
			require.Equalf(t, before, after, "step %d: rejected move changed the screen", i)
		}
	}
}
