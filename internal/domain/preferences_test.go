package domain

import "testing"

func TestPreferencesComplete(t *testing.T) {
	t.Parallel()

	var p Preferences
	if p.Complete() {
		t.Error("Expected empty preferences to be incomplete")
	}

	p.Name = "Dina"
	p.Gender = GenderFemale
	p.CoffeePreference = CoffeePreferenceCoffee
	if p.Complete() {
		t.Error("Expected preferences missing alcohol answer to be incomplete")
	}

	p.AlcoholPreference = AlcoholPreferenceCocktail
	if !p.Complete() {
		t.Error("Expected fully answered preferences to be complete")
	}
}

func TestPreferencesValidate(t *testing.T) {
	t.Parallel()

	valid := Preferences{
		Name:              "Dina",
		Gender:            GenderFemale,
		CoffeePreference:  CoffeePreferenceCoffee,
		AlcoholPreference: AlcoholPreferenceCocktail,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.Name = ""
	if err := invalid.Validate(); err != ErrPreferencesNameEmpty {
		t.Errorf("Expected error %v, got %v", ErrPreferencesNameEmpty, err)
	}

	invalid = valid
	invalid.Gender = "unknown"
	if err := invalid.Validate(); err != ErrPreferencesGenderInvalid {
		t.Errorf("Expected error %v, got %v", ErrPreferencesGenderInvalid, err)
	}

	invalid = valid
	invalid.CoffeePreference = "latte"
	if err := invalid.Validate(); err != ErrPreferencesCoffeeInvalid {
		t.Errorf("Expected error %v, got %v", ErrPreferencesCoffeeInvalid, err)
	}

	invalid = valid
	invalid.AlcoholPreference = "wine"
	if err := invalid.Validate(); err != ErrPreferencesAlcoholInvalid {
		t.Errorf("Expected error %v, got %v", ErrPreferencesAlcoholInvalid, err)
	}
}
