// Package api implements the HTTP layer: the endpoint pipeline that composes
// method checking, authentication, input validation, authorization and error
// classification, plus the user and task handlers built on it. Errors raised
// by the services are mapped to the client-facing contract exactly once, in
// this package's taxonomy.
package api
