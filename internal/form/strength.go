package form

// MaxStrength is the highest strength score.
const MaxStrength = 5

// Strength labels.
const (
	LabelVeryWeak = "Very Weak"
	LabelWeak     = "Weak"
	LabelFair     = "Fair"
	LabelGood     = "Good"
	LabelStrong   = "Strong"
)

// PasswordStrength is the derived strength of a password.
type PasswordStrength struct {
	Score          int     `json:"score"`
	Label          string  `json:"label"`
	FractionFilled float64 `json:"fraction"`
	// Tone is the colour family of the meter: red, orange, yellow, blue, green.
	Tone string `json:"tone"`
}

// ScoreStrength scores password. It returns ok=false for an empty password:
// the indicator is hidden rather than showing a zero score.
func ScoreStrength(password string) (PasswordStrength, bool) {
	if password == "" {
		return PasswordStrength{}, false
	}

	score := 0
	if textLength(password) >= minPasswordLength {
		score++
	}
	if hasLower.MatchString(password) {
		score++
	}
	if hasUpper.MatchString(password) {
		score++
	}
	if hasDigit.MatchString(password) {
		score++
	}
	if hasSymbol.MatchString(password) {
		score++
	}

	label, tone := strengthLabel(score)
	return PasswordStrength{
		Score:          score,
		Label:          label,
		FractionFilled: float64(score) / MaxStrength,
		Tone:           tone,
	}, true
}

func strengthLabel(score int) (string, string) {
	switch score {
	case 0, 1:
		return LabelVeryWeak, "red"
	case 2:
		return LabelWeak, "orange"
	case 3:
		return LabelFair, "yellow"
	case 4:
		return LabelGood, "blue"
	default:
		return LabelStrong, "green"
	}
}
