// Package config loads jobdex configuration from YAML files, with
// ${VAR} environment substitution, defaulting, and validation.
package config
