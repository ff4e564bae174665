package classify

import "testing"

func TestClassify(t *testing.T) {
	c := New()

	cases := []struct {
		name       string
		transcript string
		digit      string
		want       Outcome
	}{
		{"spoken yes", "yes", "", OutcomeTaken},
		{"case-insensitive keyword in sentence", "YES please", "9", OutcomeTaken},
		{"digit wins over non-affirmative speech", "no", "1", OutcomeTaken},
		{"hindi affirmative", "haan maine le li", "", OutcomeTaken},
		{"short hindi word exact only", "ha", "", OutcomeTaken},
		{"short word not matched inside others", "that was hard", "", OutcomeMissed},
		{"non-affirmative digit", "", "9", OutcomeMissed},
		{"no signal at all", "", "", OutcomeMissed},
		{"spoken refusal", "no I did not", "", OutcomeMissed},
		{"whitespace only", "   ", "  ", OutcomeMissed},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.transcript, tc.digit); got != tc.want {
			t.Fatalf("%s: Classify(%q, %q) = %q, want %q", tc.name, tc.transcript, tc.digit, got, tc.want)
		}
	}
}

func TestClassifyCustomVocabulary(t *testing.T) {
	c := NewWithKeywords([]string{"si", "claro"}, "5")

	if got := c.Classify("claro que si", ""); got != OutcomeTaken {
		t.Fatalf("expected taken, got %q", got)
	}
	if got := c.Classify("", "5"); got != OutcomeTaken {
		t.Fatalf("expected taken for digit 5, got %q", got)
	}
	if got := c.Classify("", "1"); got != OutcomeMissed {
		t.Fatalf("expected missed for digit 1, got %q", got)
	}
}
