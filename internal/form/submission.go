package form

import (
	"bytes"
	"encoding/json"
)

// Submission is a complete set of form values as sent by the JSON API or
// read from a YAML file.
type Submission struct {
	FullName        string     `json:"fullName" yaml:"fullName"`
	Email           string     `json:"email" yaml:"email"`
	Phone           string     `json:"phone" yaml:"phone"`
	Password        string     `json:"password" yaml:"password"`
	ConfirmPassword string     `json:"confirmPassword" yaml:"confirmPassword"`
	Age             FlexString `json:"age" yaml:"age"`
	Terms           bool       `json:"terms" yaml:"terms"`
}

// FlexString accepts a JSON string or number. The age field arrives as either.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// Values converts the submission into engine values.
func (s Submission) Values() map[FieldName]Value {
	return map[FieldName]Value{
		FieldFullName:        TextValue(s.FullName),
		FieldEmail:           TextValue(s.Email),
		FieldPhone:           TextValue(s.Phone),
		FieldPassword:        TextValue(s.Password),
		FieldConfirmPassword: TextValue(s.ConfirmPassword),
		FieldAge:             TextValue(string(s.Age)),
		FieldTerms:           BoolValue(s.Terms),
	}
}

// Report is the outcome of validating a Submission.
type Report struct {
	Valid  bool                           `json:"valid"`
	Fields map[FieldName]ValidationResult `json:"fields"`
}

// Invalid returns the failing fields in form order.
func (r Report) Invalid() []FieldName {
	var names []FieldName
	for _, name := range fieldOrder {
		if res, ok := r.Fields[name]; ok && !res.Valid {
			names = append(names, name)
		}
	}
	return names
}

// Check validates s headlessly with rules and returns the report.
func Check(s Submission, rules *Rules) Report {
	fc := NewFormController(nil, WithRules(rules))
	valid, results := fc.ValidateValues(s.Values())
	return Report{Valid: valid, Fields: results}
}
