// Package domain defines the core types shared by every layer of the client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines:
//
//   - The error taxonomy: authentication, service and parse errors
//   - AuthorizationDomain: a named credential scope, and its Registry
//   - OAuthToken: stored bearer credentials
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
