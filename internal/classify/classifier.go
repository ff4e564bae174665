package classify

import "strings"

// Outcome is the content-level classification of a callee response.
// No-answer and failure outcomes are decided by the orchestrator from
// call-status signals, never here.
type Outcome string

const (
	OutcomeTaken  Outcome = "taken"
	OutcomeMissed Outcome = "missed"
)

// Classifier maps a gathered speech transcript and/or DTMF digit to an
// outcome. It is a pure decision component with no I/O.
type Classifier struct {
	affirmativeWords []string
	affirmativeDigit string
}

// New returns a classifier with the default affirmative set: "yes" plus
// the Hindi equivalents the original deployment recognized, and digit "1".
func New() *Classifier {
	return &Classifier{
		affirmativeWords: []string{"yes", "haan", "ha"},
		affirmativeDigit: "1",
	}
}

// NewWithKeywords returns a classifier with a custom affirmative vocabulary.
func NewWithKeywords(words []string, digit string) *Classifier {
	c := New()
	if len(words) > 0 {
		c.affirmativeWords = words
	}
	if digit != "" {
		c.affirmativeDigit = digit
	}
	return c
}

// Classify applies the affirmative-match rule.
//
// An explicit affirmative keyword in the transcript wins outright. When the
// transcript carries no affirmative, the digit decides; this avoids
// misclassifying ambiguous speech-to-text output when a deliberate button
// press was made. No signal at all is missed.
func (c *Classifier) Classify(transcript, digit string) Outcome {
	if c.transcriptAffirmative(transcript) {
		return OutcomeTaken
	}
	digit = strings.TrimSpace(digit)
	if digit != "" {
		if digit == c.affirmativeDigit {
			return OutcomeTaken
		}
		return OutcomeMissed
	}
	return OutcomeMissed
}

func (c *Classifier) transcriptAffirmative(transcript string) bool {
	spoken := strings.ToLower(strings.TrimSpace(transcript))
	if spoken == "" {
		return false
	}
	for _, w := range c.affirmativeWords {
		// "ha" is too short for substring matching; require an exact word.
		if len(w) <= 2 {
			if spoken == w {
				return true
			}
			continue
		}
		if strings.Contains(spoken, w) {
			return true
		}
	}
	return false
}
