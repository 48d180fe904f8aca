// Package handler is the HTTP layer between the router and the services.
//
// It binds and validates requests through the validation package, calls
// the service layer, and writes JSON responses. Errors are returned to
// the global error handler unchanged.
package handler
