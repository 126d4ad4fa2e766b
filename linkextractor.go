package spider

// LinkExtractor finds outbound hyperlinks in HTML.
type LinkExtractor interface {
	// ExtractLinks parses html and returns the absolute URLs it links to.
	// Relative hrefs are resolved against baseURL. The result contains each
	// URL once, in document order.
	ExtractLinks(baseURL, html string) ([]string, error)
}
