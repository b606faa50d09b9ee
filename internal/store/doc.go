// Package store defines the persistence interfaces consumed by the service
// layer, along with the shared database abstraction and the sentinel errors
// store implementations translate driver errors into.
package store
