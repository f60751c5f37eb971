// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml and ACADEMY_ environment variables.
package config
