// Package runner wires the scraper, extractor and storage packages into a
// single run: polls first, then standings.
package runner
