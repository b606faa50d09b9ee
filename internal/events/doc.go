// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose
// coupling between components in the system. The capture service reacts to
// session events (generation jobs finishing, contact details arriving) without
// the session state machine knowing about delivery at all, which keeps the
// dependency arrows pointing one way.
//
// The primary components are:
// - SessionEvent: a readiness change on one capture session
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
