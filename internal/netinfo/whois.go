package netinfo

import (
	"fmt"
	"strings"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// WhoisSummary is the trimmed-down registration record shown to the
// user.
type WhoisSummary struct {
	Domain      string
	Registrar   string
	Created     string
	Updated     string
	Expires     string
	NameServers []string
	Status      []string
}

// Whois fetches and parses the registration record for a domain.
func Whois(domain string) (*WhoisSummary, error) {
	raw, err := whois.Whois(domain)
	if err != nil {
		return nil, fmt.Errorf("whois %s: %w", domain, err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing whois for %s: %w", domain, err)
	}

	return summaryFromInfo(domain, info), nil
}

// WhoisTarget strips a hostname down to something a registry will
// answer for: the www prefix goes, IP literals and bare hosts pass
// through unchanged.
func WhoisTarget(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func summaryFromInfo(domain string, info whoisparser.WhoisInfo) *WhoisSummary {
	s := &WhoisSummary{Domain: domain}

	if info.Domain != nil {
		if info.Domain.Domain != "" {
			s.Domain = info.Domain.Domain
		}
		s.Created = info.Domain.CreatedDate
		s.Updated = info.Domain.UpdatedDate
		s.Expires = info.Domain.ExpirationDate
		s.NameServers = info.Domain.NameServers
		s.Status = info.Domain.Status
	}
	if info.Registrar != nil {
		s.Registrar = info.Registrar.Name
	}
	return s
}
