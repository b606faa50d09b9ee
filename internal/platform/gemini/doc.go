// Package gemini integrates with Google's Gemini API to rewrite the stored
// fortune examples into fresh text for each customer. The rewrite is strictly
// best-effort: any API or parse failure falls back to the stored originals.
package gemini
