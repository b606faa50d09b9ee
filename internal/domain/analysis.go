package domain

// AnalysisResult holds whatever the external analysis webhook managed to read
// from the photo. Every field is optional: the webhook is a black box and may
// return any subset, or nothing usable at all.
type AnalysisResult struct {
	Mood    string `json:"mood,omitempty"`
	Age     string `json:"age,omitempty"`
	Drink   string `json:"drink,omitempty"`
	Emotion string `json:"emotion,omitempty"`
}

// Empty reports whether the analysis produced no usable fields.
func (a AnalysisResult) Empty() bool {
	return a.Mood == "" && a.Age == "" && a.Drink == "" && a.Emotion == ""
}
