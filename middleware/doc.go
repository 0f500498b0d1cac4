// Package middleware adapts dnaAuth.Engine to net/http.
//
// # Handlers
//
//   - [Authenticate] analyzes every request, sets the diagnostic response
//     headers and attaches the decision to the request context.
//   - [RequireSession] rejects requests without a live session.
//   - [RequirePermission] additionally requires a named permission.
//
// Rejections are written as JSON bodies by [WriteError]. The package makes no
// decisions of its own; it translates Engine results into HTTP responses.
package middleware
