// Package config loads scraper settings from defaults, an optional YAML file,
// a .env file and SPORTSREF_* environment variables.
package config
