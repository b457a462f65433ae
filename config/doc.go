// Package config provides configuration loading and validation for statica.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (STATICA_ prefix)
//  4. CLI flags
//
// Without explicit files, ./statica.yaml is read when present.
//
// # Environment Variables
//
// All config keys map to environment variables with STATICA_ prefix:
//   - server.port → STATICA_SERVER_PORT
//   - server.mode → STATICA_SERVER_MODE
//   - storage.path → STATICA_STORAGE_PATH
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: host, port and protocol mode (compat/strict)
//   - Storage: the directory to serve
//   - Cache: max_age advertised in Cache-Control, in seconds
//   - Compression: enabled and level (-1 default, 0-9)
//   - Listing: whether directories render an index page
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format (text/json)
//
// The configuration is read once at startup and never mutated afterwards.
package config
