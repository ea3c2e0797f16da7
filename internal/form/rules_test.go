package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		kind  Kind
		value Value
		code  Code
		msg   string
	}{
		{KindText, TextValue(""), CodeFullNameRequired, "Full name is required."},
		{KindEmail, TextValue("   "), CodeEmailRequired, "Email address is required."},
		{KindPhone, TextValue(""), CodePhoneRequired, "Phone number is required."},
		{KindPassword, TextValue(""), CodePasswordRequired, "Password is required."},
		{KindConfirmPassword, TextValue(""), CodeConfirmRequired, "Please confirm your password."},
		{KindNumeric, TextValue(" "), CodeAgeRequired, "Age is required."},
		{KindConsent, BoolValue(false), CodeTermsRequired, "You must agree to the terms and conditions."},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			// A non-empty password in context must not influence the empty check.
			result := Validate(tt.kind, tt.value, RuleContext{Password: "Abcdefg1"})
			assert.False(t, result.Valid)
			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, tt.msg, result.Message)
		})
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		value string
		ctx   RuleContext
		code  Code
	}{
		{"full name valid", KindText, "Jane Doe", RuleContext{}, CodeNone},
		{"full name digits", KindText, "Jane1", RuleContext{}, CodeFullNamePattern},
		{"full name short", KindText, "J", RuleContext{}, CodeFullNameLength},
		{"full name short beats pattern", KindText, "1", RuleContext{}, CodeFullNameLength},
		{"full name trimmed", KindText, "  Jo  ", RuleContext{}, CodeNone},
		{"full name no-break space", KindText, "Jane\u00a0Doe", RuleContext{}, CodeNone},

		{"email valid", KindEmail, "a@b.co", RuleContext{}, CodeNone},
		{"email no tld", KindEmail, "a@b", RuleContext{}, CodeEmailPattern},
		{"email inner space", KindEmail, "a b@c.de", RuleContext{}, CodeEmailPattern},
		{"email double at", KindEmail, "a@@b.co", RuleContext{}, CodeEmailPattern},
		{"email ideographic space", KindEmail, "a\u3000b@c.de", RuleContext{}, CodeEmailPattern},

		{"phone plus", KindPhone, "+12345678901", RuleContext{}, CodeNone},
		{"phone formatted", KindPhone, "(123) 456-7890", RuleContext{}, CodeNone},
		{"phone no-break spaces", KindPhone, "123\u00a0456\u00a07890", RuleContext{}, CodeNone},
		{"phone letters", KindPhone, "abc", RuleContext{}, CodePhonePattern},
		{"phone leading zero", KindPhone, "0123456", RuleContext{}, CodePhonePattern},
		{"phone sixteen digits", KindPhone, "1234567890123456", RuleContext{}, CodeNone},
		{"phone seventeen digits", KindPhone, "12345678901234567", RuleContext{}, CodePhonePattern},

		{"password valid", KindPassword, "Abcdefg1", RuleContext{}, CodeNone},
		{"password short", KindPassword, "abc", RuleContext{}, CodePasswordLength},
		{"password emoji counts twice", KindPassword, "Abcde\U0001F600" + "1", RuleContext{}, CodeNone},
		{"password accents count once", KindPassword, "Abcdé1", RuleContext{}, CodePasswordLength},
		{"password no digit", KindPassword, "Abcdefgh", RuleContext{}, CodePasswordComplexity},
		{"password no upper", KindPassword, "abcdefg1", RuleContext{}, CodePasswordComplexity},
		{"password no lower", KindPassword, "ABCDEFG1", RuleContext{}, CodePasswordComplexity},

		{"confirm match", KindConfirmPassword, "Abcdefg1", RuleContext{Password: "Abcdefg1"}, CodeNone},
		{"confirm mismatch", KindConfirmPassword, "Abcdefg2", RuleContext{Password: "Abcdefg1"}, CodeConfirmMismatch},
		{"confirm case", KindConfirmPassword, "abcdefg1", RuleContext{Password: "Abcdefg1"}, CodeConfirmMismatch},

		{"age lower bound", KindNumeric, "13", RuleContext{}, CodeNone},
		{"age upper bound", KindNumeric, "120", RuleContext{}, CodeNone},
		{"age too young", KindNumeric, "12", RuleContext{}, CodeAgeRange},
		{"age too old", KindNumeric, "121", RuleContext{}, CodeAgeRange},
		{"age letters", KindNumeric, "abc", RuleContext{}, CodeAgeRange},
		{"age negative", KindNumeric, "-20", RuleContext{}, CodeAgeRange},
		{"age trailing text", KindNumeric, "42 years", RuleContext{}, CodeNone},
		{"age huge", KindNumeric, "99999999999999999999", RuleContext{}, CodeAgeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.kind, TextValue(tt.value), tt.ctx)
			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, tt.code == CodeNone, result.Valid)
			if result.Valid {
				assert.Empty(t, result.Message)
			} else {
				assert.Equal(t, english[tt.code], result.Message)
			}
		})
	}
}

func TestValidateConsent(t *testing.T) {
	assert.Equal(t, ValidationResult{Valid: true}, Validate(KindConsent, BoolValue(true), RuleContext{}))
	// Text is irrelevant for the checkbox.
	assert.False(t, Validate(KindConsent, Value{Text: "yes"}, RuleContext{}).Valid)
}

func TestValidateIdempotent(t *testing.T) {
	inputs := []struct {
		kind  Kind
		value Value
	}{
		{KindText, TextValue("Jane1")},
		{KindEmail, TextValue("a@b.co")},
		{KindNumeric, TextValue("abc")},
		{KindConsent, BoolValue(false)},
	}
	for _, in := range inputs {
		first := Validate(in.kind, in.value, RuleContext{})
		second := Validate(in.kind, in.value, RuleContext{})
		assert.Equal(t, first, second)
	}
}

func TestRulesUseCatalog(t *testing.T) {
	rules := NewRules(NewCatalog("es"))

	result := rules.Validate(KindEmail, TextValue(""), RuleContext{})
	assert.Equal(t, CodeEmailRequired, result.Code)
	assert.Equal(t, "El correo electrónico es obligatorio.", result.Message)
}

func TestTextLength(t *testing.T) {
	assert.Equal(t, 0, textLength(""))
	assert.Equal(t, 3, textLength("abc"))
	assert.Equal(t, 1, textLength("é"))
	assert.Equal(t, 2, textLength("\U0001F600"))
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"13", 13, true},
		{"+14", 14, true},
		{"-3", -3, true},
		{"12.9", 12, true},
		{"", 0, false},
		{"-", 0, false},
		{"x1", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
