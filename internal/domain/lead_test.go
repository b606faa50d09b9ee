package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewLead(t *testing.T) {
	t.Parallel()

	contact := Contact{Email: "dina@example.com", WhatsApp: "+62 812-3456-7890"}
	notes := "Category: Coffee Cocktail"

	lead, err := NewLead(contact, notes)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if lead.ID == uuid.Nil {
		t.Error("Expected non-nil lead ID")
	}
	if lead.Status != LeadStatusNew {
		t.Errorf("Expected status %s, got %s", LeadStatusNew, lead.Status)
	}
	if lead.Source != LeadSourcePhotoCapture {
		t.Errorf("Expected source %s, got %s", LeadSourcePhotoCapture, lead.Source)
	}
	if lead.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	_, err = NewLead(Contact{WhatsApp: "0812"}, "")
	if err != ErrLeadEmailEmpty {
		t.Errorf("Expected error %v, got %v", ErrLeadEmailEmpty, err)
	}
}

func TestLeadValidate(t *testing.T) {
	t.Parallel()

	valid := Lead{
		ID:       uuid.New(),
		Email:    "dina@example.com",
		WhatsApp: "081234567890",
		Status:   LeadStatusNew,
		Source:   LeadSourcePhotoCapture,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.ID = uuid.Nil
	if err := invalid.Validate(); err != ErrLeadIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrLeadIDEmpty, err)
	}

	invalid = valid
	invalid.Status = "archived"
	if err := invalid.Validate(); err != ErrLeadStatusInvalid {
		t.Errorf("Expected error %v, got %v", ErrLeadStatusInvalid, err)
	}
}

func TestBuildLeadNotes(t *testing.T) {
	t.Parallel()

	prefs := Preferences{
		Name:              "Dina",
		Gender:            GenderFemale,
		CoffeePreference:  CoffeePreferenceCoffee,
		AlcoholPreference: AlcoholPreferenceCocktail,
	}

	notes := BuildLeadNotes(prefs)

	for _, line := range []string{
		"Category: Coffee Cocktail",
		"Name: Dina",
		"Gender: female",
		"Coffee Preference: coffee",
		"Alcohol Preference: cocktail",
	} {
		if !strings.Contains(notes, line) {
			t.Errorf("Expected notes to contain %q, got:\n%s", line, notes)
		}
	}
}
