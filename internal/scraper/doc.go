// Package scraper provides HTTP fetching for sports-reference.com season pages.
//
// The scraper issues a single GET per page with a browser-like User-Agent, since
// the site rejects obvious bot clients, and returns the raw HTML. Failures are
// reported as *FetchError and are never retried.
package scraper
