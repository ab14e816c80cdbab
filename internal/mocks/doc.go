// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock exposes function fields so individual tests
// can override exactly the behavior they need.
package mocks
