// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML client configuration with environment overrides
//   - TokenStore: TOML persistence of OAuth tokens
package file
