// Package delivery packages finished generation artifacts together with the
// customer's contact details and posts them to the delivery endpoints. The
// whole sequence is best-effort: a failed delivery is logged and dropped, it
// never blocks the kiosk flow from reaching the thank-you screen.
package delivery
