// Package cli implements the command-line interface for sportsref-scraper.
//
// The cli package provides the Cobra root command. It loads configuration,
// applies flag overrides, runs the polls and standings pipelines and prints
// a text or JSON summary of the files written.
package cli
