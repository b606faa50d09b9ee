// Package service contains the application services that orchestrate the
// kiosk capture flow across the domain, stores, and external endpoints. The
// capture service owns the lifecycle of a session from the preference wizard
// through delivery and reset.
package service
