// Package postgres contains the PostgreSQL implementations of the store
// interfaces. Each store takes a store.DBTX so it works identically with a
// *sql.DB and with a transaction managed by the caller.
package postgres
