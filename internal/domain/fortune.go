package domain

// Fortune is a row in the fortunes table: a mood-keyed pair of example
// strings. The stored gimmick and story are examples only; before display
// they are rewritten by the generative text endpoint, falling back to the
// stored originals when the rewrite fails.
type Fortune struct {
	ID      int64  `json:"id"`
	Mood    string `json:"mood"`
	Gimmick string `json:"gimmick"`
	Story   string `json:"story"`
}
