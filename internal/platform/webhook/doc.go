// Package webhook is the client for the externally hosted workflow endpoints
// (n8n). It speaks multipart form uploads on the way out and tolerates the
// whole zoo of response shapes the generation workflows answer with: raw
// image bytes, base64 arrays, storage keys, or bare URLs.
package webhook
