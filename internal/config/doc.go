// Package config loads quotesheet configuration from a YAML file with
// ${VAR} environment expansion, applies defaults, layers environment
// overrides, and validates the result. Everything is read once at startup.
package config
