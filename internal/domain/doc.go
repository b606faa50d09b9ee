// Package domain contains the core entities of the capture flow: customer
// preferences, the drink category derived from them, contact details, analysis
// results, and the rows persisted to the leads, drink_menu, and fortunes tables.
//
// Domain types validate themselves and carry no dependencies on storage,
// transport, or external services.
package domain
