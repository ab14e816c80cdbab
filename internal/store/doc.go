// Package store defines the persistence interfaces consumed by the service
// layer, along with the sentinel errors every implementation must return and
// a helper for running multiple store operations in one transaction.
package store
