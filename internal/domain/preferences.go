package domain

import "errors"

// Gender is the customer's self-reported gender from the wizard.
type Gender string

// Possible gender values
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// CoffeePreference captures the coffee half of the drink preference.
type CoffeePreference string

// Possible coffee preference values
const (
	CoffeePreferenceCoffee    CoffeePreference = "coffee"
	CoffeePreferenceNonCoffee CoffeePreference = "non-coffee"
)

// AlcoholPreference captures the alcohol half of the drink preference.
type AlcoholPreference string

// Possible alcohol preference values
const (
	AlcoholPreferenceCocktail   AlcoholPreference = "cocktail"
	AlcoholPreferenceNonAlcohol AlcoholPreference = "non-alcohol"
)

// Common validation errors for Preferences
var (
	ErrPreferencesNameEmpty      = errors.New("preferences name cannot be empty")
	ErrPreferencesGenderInvalid  = errors.New("invalid gender")
	ErrPreferencesCoffeeInvalid  = errors.New("invalid coffee preference")
	ErrPreferencesAlcoholInvalid = errors.New("invalid alcohol preference")
)

// Preferences holds the answers collected by the four-step wizard shown before
// the photo is taken. Fields are filled one step at a time and the struct is
// treated as immutable once the wizard completes.
type Preferences struct {
	Name              string            `json:"name"`
	Gender            Gender            `json:"gender"`
	CoffeePreference  CoffeePreference  `json:"coffee_preference"`
	AlcoholPreference AlcoholPreference `json:"alcohol_preference"`
}

// Complete reports whether all four wizard answers have been provided.
func (p Preferences) Complete() bool {
	return p.Name != "" && p.Gender != "" && p.CoffeePreference != "" && p.AlcoholPreference != ""
}

// Validate checks that every provided answer is one of the allowed values and
// that no answer is missing. Returns the first validation error encountered.
func (p Preferences) Validate() error {
	if p.Name == "" {
		return ErrPreferencesNameEmpty
	}

	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return ErrPreferencesGenderInvalid
	}

	switch p.CoffeePreference {
	case CoffeePreferenceCoffee, CoffeePreferenceNonCoffee:
	default:
		return ErrPreferencesCoffeeInvalid
	}

	switch p.AlcoholPreference {
	case AlcoholPreferenceCocktail, AlcoholPreferenceNonAlcohol:
	default:
		return ErrPreferencesAlcoholInvalid
	}

	return nil
}
