package rewrite

import "strings"

// Rewriter applies a fixed rule set to message text.
type Rewriter struct {
	rules []Rule
}

// New returns a Rewriter over rules. With no rules it uses Rules().
func New(rules ...Rule) *Rewriter {
	if len(rules) == 0 {
		rules = Rules()
	}
	return &Rewriter{rules: rules}
}

// Rewrite returns the rewritten form of every recognised link in text.
//
// Each rule is applied to the whole text on its own and the per-rule results are
// concatenated in rule order, so a message mixing domains comes back grouped by
// rule rather than in reading order. A link matched by two rules yields two URLs.
func (r *Rewriter) Rewrite(text string) []string {
	var out []string
	for _, rule := range r.rules {
		for _, m := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			out = append(out, build(m[1], rule.Replacement, m[2]))
		}
	}
	return out
}

func build(subdomain, domain, path string) string {
	var b strings.Builder
	b.Grow(len("https://") + len(subdomain) + len(domain) + 1 + len(path))
	b.WriteString("https://")
	b.WriteString(subdomain)
	b.WriteString(domain)
	b.WriteByte('/')
	b.WriteString(path)
	return b.String()
}
