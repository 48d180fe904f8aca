// Package errs defines the application's error types.
//
// Two families live here:
//   - Error/Kind: the failure taxonomy the data-access layer reports
//     (connection, not found, conflict, invalid argument, persistence).
//   - HTTPError: the consistent JSON error shape returned to API clients.
//
// The API layer translates the first family into the second.
package errs
