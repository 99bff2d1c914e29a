package forms

type Criterion struct {
	Label   string
	Pattern string
	Met     bool
}

type Strength struct {
	Criteria []Criterion
	Passed   int
	// Level is Weak, Medium or Strong; empty for an empty password.
	Level string
}

var strengthRules = []struct {
	label   string
	pattern string
	check   func(string) bool
}{
	{"At least 8 characters", `^.{8,}$`, func(p string) bool { return len([]rune(p)) >= 8 }},
	{"Contains uppercase letter", upperRe.String(), upperRe.MatchString},
	{"Contains lowercase letter", lowerRe.String(), lowerRe.MatchString},
	{"Contains number", digitRe.String(), digitRe.MatchString},
	{"Contains special character", specialRe.String(), specialRe.MatchString},
}

func PasswordStrength(password string) Strength {
	s := Strength{Criteria: make([]Criterion, 0, len(strengthRules))}
	for _, r := range strengthRules {
		met := r.check(password)
		if met {
			s.Passed++
		}
		s.Criteria = append(s.Criteria, Criterion{Label: r.label, Pattern: r.pattern, Met: met})
	}
	if password == "" {
		return s
	}
	switch {
	case s.Passed < 3:
		s.Level = "Weak"
	case s.Passed < 5:
		s.Level = "Medium"
	default:
		s.Level = "Strong"
	}
	return s
}
