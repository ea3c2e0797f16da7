package form

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// ValidationResult is the outcome of validating one field once.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// RuleContext carries cross-field data into a rule.
type RuleContext struct {
	// Password is the live, untrimmed password value.
	Password string
}

// space is the browser's whitespace class. Go's \s is ASCII only.
const space = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z` + space + `]+$`)
	emailPattern = regexp.MustCompile(`^[^@` + space + `]+@[^@` + space + `]+\.[^@` + space + `]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneFormat  = regexp.MustCompile(`[\-()` + space + `]`)
	hasLower     = regexp.MustCompile(`[a-z]`)
	hasUpper     = regexp.MustCompile(`[A-Z]`)
	hasDigit     = regexp.MustCompile(`\d`)
	hasSymbol    = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

const (
	minNameLength     = 2
	minPasswordLength = 8
	minAge            = 13
	maxAge            = 120
)

// Rules validates field values and renders failures through a catalog.
// The zero value uses English messages.
type Rules struct {
	catalog *Catalog
}

// NewRules returns rules that render messages through catalog.
func NewRules(catalog *Catalog) *Rules {
	return &Rules{catalog: catalog}
}

// Validate checks value against the rule for kind. Checks run in a fixed order
// and the first failing one wins.
func (r *Rules) Validate(kind Kind, value Value, ctx RuleContext) ValidationResult {
	code := check(kind, value, ctx)
	if code == CodeNone {
		return ValidationResult{Valid: true}
	}
	var c *Catalog
	if r != nil {
		c = r.catalog
	}
	return ValidationResult{Code: code, Message: c.Message(code)}
}

// Validate checks value with English messages.
func Validate(kind Kind, value Value, ctx RuleContext) ValidationResult {
	var r *Rules
	return r.Validate(kind, value, ctx)
}

func check(kind Kind, value Value, ctx RuleContext) Code {
	if kind == KindConsent {
		if !value.Checked {
			return CodeTermsRequired
		}
		return CodeNone
	}

	text := strings.TrimSpace(value.Text)
	switch kind {
	case KindText:
		switch {
		case text == "":
			return CodeFullNameRequired
		case textLength(text) < minNameLength:
			return CodeFullNameLength
		case !namePattern.MatchString(text):
			return CodeFullNamePattern
		}
	case KindEmail:
		switch {
		case text == "":
			return CodeEmailRequired
		case !emailPattern.MatchString(text):
			return CodeEmailPattern
		}
	case KindPhone:
		switch {
		case text == "":
			return CodePhoneRequired
		case !phonePattern.MatchString(phoneFormat.ReplaceAllString(text, "")):
			return CodePhonePattern
		}
	case KindPassword:
		switch {
		case text == "":
			return CodePasswordRequired
		case textLength(text) < minPasswordLength:
			return CodePasswordLength
		case !(hasLower.MatchString(text) && hasUpper.MatchString(text) && hasDigit.MatchString(text)):
			return CodePasswordComplexity
		}
	case KindConfirmPassword:
		switch {
		case text == "":
			return CodeConfirmRequired
		case text != ctx.Password:
			return CodeConfirmMismatch
		}
	case KindNumeric:
		if text == "" {
			return CodeAgeRequired
		}
		age, ok := parseLeadingInt(text)
		if !ok || age < minAge || age > maxAge {
			return CodeAgeRange
		}
	}
	return CodeNone
}

// parseLeadingInt reads an optionally signed run of leading decimal digits and
// ignores whatever follows, so "42 years" parses as 42 and "abc" fails.
func parseLeadingInt(s string) (int, bool) {
	i := 0
	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		// Clamp so very long inputs stay out of range instead of overflowing.
		if n <= maxAge*10 {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

// textLength counts UTF-16 code units, the unit browsers use for length
// limits. Characters outside the BMP count twice.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
