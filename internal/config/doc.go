// Package config loads the coinstream YAML configuration.
//
// ${VAR} references are expanded from the environment before parsing, and an
// optional .env file can seed the environment first. Missing optional fields
// take the defaults in defaults.go.
package config
