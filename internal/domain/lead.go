package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeadStatus tracks how far the venue has taken a captured lead.
type LeadStatus string

// Possible lead status values
const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusClosed    LeadStatus = "closed"
)

// LeadSourcePhotoCapture marks leads created by the kiosk capture flow.
const LeadSourcePhotoCapture = "Photo Capture"

// Common validation errors for Lead
var (
	ErrLeadIDEmpty       = errors.New("lead ID cannot be empty")
	ErrLeadEmailEmpty    = errors.New("lead email cannot be empty")
	ErrLeadWhatsAppEmpty = errors.New("lead whatsapp cannot be empty")
	ErrLeadStatusInvalid = errors.New("invalid lead status")
)

// Lead is a row in the leads table: one captured customer with contact
// details, the preference notes block, and the uploaded photo's public URL
// once storage upload succeeds.
type Lead struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	WhatsApp  string     `json:"whatsapp"`
	Status    LeadStatus `json:"status"`
	Source    string     `json:"source"`
	Notes     string     `json:"notes,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewLead creates a lead for the capture flow with status "new" and the
// photo-capture source. Returns an error if validation fails.
func NewLead(contact Contact, notes string) (*Lead, error) {
	lead := &Lead{
		ID:        uuid.New(),
		Email:     contact.Email,
		WhatsApp:  contact.WhatsApp,
		Status:    LeadStatusNew,
		Source:    LeadSourcePhotoCapture,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

// Validate checks if the Lead has valid data.
func (l *Lead) Validate() error {
	if l.ID == uuid.Nil {
		return ErrLeadIDEmpty
	}
	if l.Email == "" {
		return ErrLeadEmailEmpty
	}
	if l.WhatsApp == "" {
		return ErrLeadWhatsAppEmpty
	}
	if !isValidLeadStatus(l.Status) {
		return ErrLeadStatusInvalid
	}
	return nil
}

// isValidLeadStatus checks if the given status is a valid LeadStatus.
func isValidLeadStatus(status LeadStatus) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusClosed:
		return true
	default:
		return false
	}
}

// BuildLeadNotes assembles the notes block stored with every captured lead.
// The line format is read by the venue staff and by the spreadsheet export
// downstream, so it stays stable.
func BuildLeadNotes(prefs Preferences) string {
	return fmt.Sprintf(
		"Category: %s\nName: %s\nGender: %s\nCoffee Preference: %s\nAlcohol Preference: %s",
		prefs.Category(), prefs.Name, prefs.Gender, prefs.CoffeePreference, prefs.AlcoholPreference,
	)
}
