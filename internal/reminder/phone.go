package reminder

import "strings"

// NormalizePhone coerces user input into E.164. Bare 10-digit numbers get
// the +91 default country code, matching the deployment's primary locale.
// Returns "" when no digits survive.
func NormalizePhone(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if strings.HasPrefix(v, "+") {
		digits := digitsOnly(v[1:])
		if digits == "" {
			return ""
		}
		return "+" + digits
	}

	digits := digitsOnly(v)
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		return "+91" + digits
	}
	return "+" + digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
