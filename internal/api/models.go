package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/snaplead-api/internal/capture"
	"github.com/phrazzld/snaplead-api/internal/domain"
)

// Common request/response structures

// WizardAnswerRequest carries one or more wizard step answers. The kiosk posts
// each step as it is answered, so every field is optional.
type WizardAnswerRequest struct {
	Name              *string `json:"name,omitempty"`
	Gender            *string `json:"gender,omitempty"            validate:"omitempty,oneof=male female other"`
	CoffeePreference  *string `json:"coffee_preference,omitempty" validate:"omitempty,oneof=coffee non-coffee"`
	AlcoholPreference *string `json:"alcohol_preference,omitempty" validate:"omitempty,oneof=cocktail non-alcohol"`
}

// ContactRequest defines the payload for the contact form submission.
type ContactRequest struct {
	Email    string `json:"email"    validate:"required"`
	WhatsApp string `json:"whatsapp" validate:"required"`
}

// SessionResponse is the kiosk-facing view of a session. The captured photo
// is reported as a flag, never echoed back over the wire.
type SessionResponse struct {
	ID             uuid.UUID              `json:"id"`
	Screen         string                 `json:"screen"`
	Preferences    domain.Preferences     `json:"preferences"`
	Category       string                 `json:"category,omitempty"`
	PhotoCaptured  bool                   `json:"photo_captured"`
	Analysis       *domain.AnalysisResult `json:"analysis,omitempty"`
	AnalysisFailed bool                   `json:"analysis_failed,omitempty"`
	Drink          *domain.DrinkMenu      `json:"drink,omitempty"`
	Fortune        *domain.Fortune        `json:"fortune,omitempty"`
	Jobs           map[string]string      `json:"jobs,omitempty"`
	ResponseImage  string                 `json:"response_image,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// sessionToResponse converts a capture.Snapshot to a SessionResponse.
func sessionToResponse(snap capture.Snapshot) SessionResponse {
	resp := SessionResponse{
		ID:             snap.ID,
		Screen:         string(snap.Screen),
		Preferences:    snap.Preferences,
		Category:       string(snap.Category),
		PhotoCaptured:  len(snap.Photo) > 0,
		Analysis:       snap.Analysis,
		AnalysisFailed: snap.AnalysisFailed,
		Drink:          snap.Drink,
		Fortune:        snap.Fortune,
		ResponseImage:  snap.ResponseImage,
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}
	if len(snap.JobStatus) > 0 {
		resp.Jobs = make(map[string]string, len(snap.JobStatus))
		for kind, status := range snap.JobStatus {
			resp.Jobs[string(kind)] = string(status)
		}
	}
	return resp
}

// LeadListResponse wraps the operator-facing lead listing.
type LeadListResponse struct {
	Leads  []*domain.Lead `json:"leads"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
