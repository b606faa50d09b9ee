// Package capture implements the kiosk capture session: the screen state
// machine that walks one customer from the preference wizard to the thank-you
// screen, the tracker for the two background generation jobs, and the
// in-memory session manager.
//
// A session owns all per-customer state. Exactly one screen is active at any
// time: the session stores a single Screen value and every transition is a
// named method that checks the source screen, so two screens can never be
// active simultaneously. All state is created together when a session starts
// and reset together when the thank-you timer fires or the customer aborts.
package capture
