package validation

import "unicode/utf8"

// Strength is the password meter shown under the sign-up password field.
type Strength struct {
	Score int
	Label string
}

var strengthLabels = [...]string{"", "Weak", "Fair", "Good", "Strong", "Very Strong"}

type charClasses struct {
	upper, lower, digit, symbol bool
}

// classify uses ASCII classes: anything outside A-Z, a-z and 0-9 is a symbol.
func classify(pw string) charClasses {
	var c charClasses
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= '0' && r <= '9':
			c.digit = true
		default:
			c.symbol = true
		}
	}
	return c
}

// PasswordStrength scores one point each for length, upper, lower, digit and symbol.
func PasswordStrength(pw string) Strength {
	if pw == "" {
		return Strength{}
	}
	score := 0
	if utf8.RuneCountInString(pw) >= minPasswordLen {
		score++
	}
	c := classify(pw)
	for _, ok := range []bool{c.upper, c.lower, c.digit, c.symbol} {
		if ok {
			score++
		}
	}
	return Strength{Score: score, Label: strengthLabels[score]}
}
