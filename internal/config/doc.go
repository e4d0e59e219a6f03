// Package config loads and validates application configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config.yaml in the working directory, and SLIDESCRY_-prefixed environment
// variables (nested keys use underscores, e.g. SLIDESCRY_LLM_CALLS_PER_MINUTE).
// The resulting struct is validated with go-playground/validator tags.
package config
