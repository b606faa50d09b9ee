package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/phrazzld/snaplead-api/internal/api/middleware"
)

// NewRouter builds the application router: standard chi middleware, trace
// IDs, the kiosk session routes, the operator lead routes, and a health
// check.
func NewRouter(captureHandler *CaptureHandler, leadHandler *LeadHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", captureHandler.CreateSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", captureHandler.GetSession)
			r.Post("/wizard", captureHandler.AnswerWizard)
			r.Post("/wizard/complete", captureHandler.CompleteWizard)
			r.Post("/preferences/edit", captureHandler.EditPreferences)
			r.Post("/camera/start", captureHandler.StartCamera)
			r.Post("/photo", captureHandler.CapturePhoto)
			r.Post("/photo/retake", captureHandler.Retake)
			r.Post("/analyze", captureHandler.Analyze)
			r.Post("/proceed", captureHandler.ProceedToContact)
			r.Post("/contact", captureHandler.SubmitContact)
			r.Post("/complete", captureHandler.Complete)
			r.Post("/abort", captureHandler.AbortSession)
		})

		r.Get("/leads", leadHandler.ListLeads)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
