package marzpay

import (
	"sort"
	"strings"
)

// Provider identifies the mobile network operator behind a phone number.
type Provider string

const (
	ProviderMTN     Provider = "mtn"
	ProviderAirtel  Provider = "airtel"
	ProviderUnknown Provider = "unknown"
)

const (
	countryCallingCode = "256"
	subscriberDigits   = 12
)

// DefaultProviderPrefixes returns the Ugandan operator prefix table.
// Prefixes are the two digits following the 256 country code.
func DefaultProviderPrefixes() map[string]Provider {
	return map[string]Provider{
		"76": ProviderMTN,
		"77": ProviderMTN,
		"78": ProviderMTN,
		"31": ProviderMTN,
		"39": ProviderMTN,
		"70": ProviderAirtel,
		"75": ProviderAirtel,
	}
}

type prefixRule struct {
	prefix   string
	provider Provider
}

// PhoneNormalizer converts user-entered phone numbers to the canonical
// 256XXXXXXXXX form and maps them to a mobile network operator.
type PhoneNormalizer struct {
	rules []prefixRule
}

// NewPhoneNormalizer builds a normalizer from a prefix table. Longer
// prefixes win over shorter ones when both match.
func NewPhoneNormalizer(prefixes map[string]Provider) *PhoneNormalizer {
	rules := make([]prefixRule, 0, len(prefixes))
	for p, prov := range prefixes {
		rules = append(rules, prefixRule{prefix: p, provider: prov})
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].prefix) != len(rules[j].prefix) {
			return len(rules[i].prefix) > len(rules[j].prefix)
		}
		return rules[i].prefix < rules[j].prefix
	})
	return &PhoneNormalizer{rules: rules}
}

// Normalize strips everything but digits, converts a leading local zero
// to the 256 country code, prepends the country code to bare subscriber
// numbers, and requires exactly twelve digits. The result always carries
// the "+" prefix the gateway expects.
func (n *PhoneNormalizer) Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)
	if digits == "" {
		return "", ErrInvalidPhoneFormat
	}

	switch {
	case strings.HasPrefix(digits, "0"):
		digits = countryCallingCode + digits[1:]
	case !strings.HasPrefix(digits, countryCallingCode):
		digits = countryCallingCode + digits
	}

	if len(digits) != subscriberDigits {
		return "", ErrInvalidPhoneFormat
	}
	return "+" + digits, nil
}

// DetectProvider maps a normalized number to its operator. Numbers that
// fail normalization or match no prefix return ProviderUnknown.
func (n *PhoneNormalizer) DetectProvider(raw string) Provider {
	normalized, err := n.Normalize(raw)
	if err != nil {
		return ProviderUnknown
	}

	local := strings.TrimPrefix(normalized, "+")[len(countryCallingCode):]
	for _, rule := range n.rules {
		if strings.HasPrefix(local, rule.prefix) {
			return rule.provider
		}
	}
	return ProviderUnknown
}

// ParseProvider maps a gateway-supplied provider string to a Provider.
func ParseProvider(s string) Provider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mtn", "mtn_uganda", "mtn-uganda":
		return ProviderMTN
	case "airtel", "airtel_uganda", "airtel-uganda":
		return ProviderAirtel
	}
	return ProviderUnknown
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
