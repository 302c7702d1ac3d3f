// Package rewrite turns social-media links into links on embed-friendly mirror domains.
package rewrite

import (
	"regexp"
)

// Rule maps links on one domain to the same path on a replacement domain.
// Pattern captures the subdomain prefix (possibly empty) in group 1 and the path in group 2.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// domainPattern builds the matcher for a domain. The path is the rest of the
// non-whitespace token so query strings and deep paths survive the rewrite.
func domainPattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(`https?://((?:[\w-]+\.)*)` + regexp.QuoteMeta(domain) + `/(\S+)`)
}

var rules = []Rule{
	{Name: "TikTok", Pattern: domainPattern("tiktok.com"), Replacement: "vxtiktok.com"},
	{Name: "Instagram", Pattern: domainPattern("instagram.com"), Replacement: "ddinstagram.com"},
	{Name: "X", Pattern: domainPattern("x.com"), Replacement: "vxtwitter.com"},
	{Name: "Twitter", Pattern: domainPattern("twitter.com"), Replacement: "vxtwitter.com"},
}

// Rules returns the rewrite rules in the order their results are reported.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
