package risk

import "strings"

// Policy is the deploy-time data the evaluator compares against. The ID
// blacklist and low-risk country set change per deployment, so they are
// injected rather than baked into the signal table.
type Policy struct {
	blacklistIDs     map[string]struct{}
	lowRiskCountries map[string]struct{}
}

// Default policy data, matching the compliance team's seed lists.
var (
	DefaultBlacklistIDs     = []string{"AAAA123456", "BBBB654321"}
	DefaultLowRiskCountries = []string{"india", "usa", "uk"}
)

// NewPolicy builds a Policy from the given ID blacklist and low-risk
// country list. Countries are matched case-insensitively.
func NewPolicy(blacklistIDs, lowRiskCountries []string) Policy {
	p := Policy{
		blacklistIDs:     make(map[string]struct{}, len(blacklistIDs)),
		lowRiskCountries: make(map[string]struct{}, len(lowRiskCountries)),
	}
	for _, id := range blacklistIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			p.blacklistIDs[id] = struct{}{}
		}
	}
	for _, c := range lowRiskCountries {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			p.lowRiskCountries[c] = struct{}{}
		}
	}
	return p
}

// DefaultPolicy returns a Policy built from the default seed lists.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultBlacklistIDs, DefaultLowRiskCountries)
}

// IsBlacklistedID reports whether the (trimmed) ID is on the blacklist.
func (p Policy) IsBlacklistedID(id string) bool {
	_, ok := p.blacklistIDs[id]
	return ok
}

// IsLowRiskCountry reports whether the normalized country is low risk.
func (p Policy) IsLowRiskCountry(country string) bool {
	_, ok := p.lowRiskCountries[country]
	return ok
}
