package domain

// DrinkMenu is a row in the drink_menu table. The analysis webhook returns a
// drink name; the menu row supplies the description shown on the results
// screen and forwarded to the generation webhooks.
type DrinkMenu struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}
