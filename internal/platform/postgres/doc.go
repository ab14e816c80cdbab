// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores operate through store.DBTX so they work both on a
// plain connection and inside a transaction, and map driver errors onto the
// store sentinel errors.
package postgres
