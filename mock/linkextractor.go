package mock

import "github.com/fwojciec/spider"

var _ spider.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of spider.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(baseURL, html string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(baseURL, html string) ([]string, error) {
	return e.ExtractLinksFn(baseURL, html)
}
