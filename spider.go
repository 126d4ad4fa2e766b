// Package spider provides a resumable, domain-scoped, concurrent web crawler.
// Starting from a seed URL it visits every page reachable within one
// registrable domain, deduplicating canonical URLs and persisting the crawl
// frontier so an interrupted crawl can continue where it stopped.
//
// This package contains domain types, interfaces and the pure URL logic.
// Implementations live in subdirectories named after their primary
// dependency (e.g., goquery/, sqlite/, rod/).
package spider
