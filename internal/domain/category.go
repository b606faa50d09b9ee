package domain

// Category is the drink category derived from the coffee and alcohol
// preferences. It labels the analysis request, the generation requests, the
// lead notes, and the delivery payloads.
type Category string

// The four drink categories
const (
	CategoryCoffeeCocktail Category = "Coffee Cocktail"
	CategoryCoffeeMocktail Category = "Coffee Mocktail"
	CategoryCocktail       Category = "Cocktail"
	CategoryMocktail       Category = "Mocktail"
)

// ConstructCategory maps a coffee/alcohol preference pair to its drink
// category. The function is total: any combination outside the four valid
// pairs falls back to Mocktail rather than producing an error, so malformed
// input can never halt the capture flow.
func ConstructCategory(coffee CoffeePreference, alcohol AlcoholPreference) Category {
	switch {
	case coffee == CoffeePreferenceCoffee && alcohol == AlcoholPreferenceCocktail:
		return CategoryCoffeeCocktail
	case coffee == CoffeePreferenceCoffee && alcohol == AlcoholPreferenceNonAlcohol:
		return CategoryCoffeeMocktail
	case coffee == CoffeePreferenceNonCoffee && alcohol == AlcoholPreferenceCocktail:
		return CategoryCocktail
	default:
		return CategoryMocktail
	}
}

// Category returns the drink category for these preferences.
func (p Preferences) Category() Category {
	return ConstructCategory(p.CoffeePreference, p.AlcoholPreference)
}
