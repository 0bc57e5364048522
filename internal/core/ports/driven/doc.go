// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Transport: sends HTTP requests without following redirects
//   - Authorizer: adds credentials to requests, per authorization domain
//
// # Optional Interfaces
//
//   - TokenStore: persists OAuth tokens between runs
//   - ConfigStore: client configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
