// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between the kiosk frontend
// and the internal capture service, translating HTTP concerns to session
// operations.
package api
