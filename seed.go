package spider

import (
	"regexp"
	"strings"
)

// seedPattern accepts http, https and ftp URLs addressed by a domain name,
// localhost or an IPv4 address, with an optional port and path.
var seedPattern = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)` +
	`|localhost` +
	`|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ValidateSeedURL returns EINVALID unless rawURL is a syntactically plausible
// HTTP(S) or FTP URL. A missing scheme is treated as http.
func ValidateSeedURL(rawURL string) error {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return Errorf(EINVALID, "seed URL required")
	}
	if !strings.Contains(s, "://") {
		s = DefaultScheme + "://" + s
	}
	if !seedPattern.MatchString(s) {
		return Errorf(EINVALID, "invalid seed URL %q", rawURL)
	}
	return nil
}
