// Package scraper collects raw roster lines from classroom "People" pages.
//
// A Source returns the trimmed text of every roster element it finds, in
// page order, tagged with the 1-based index of the page (batch) it came from.
// BrowserSource drives a real Chrome session through go-rod: it waits for a
// manual login on the first page, scrolls each page until its height stops
// growing and then reads every element matching the configured selector.
// FileSource reads the same data offline from saved HTML pages or plain text
// files with one entry per line.
package scraper
