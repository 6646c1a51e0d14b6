package moderation

import "regexp"

// Patterns that force a submission into the flagged moderation queue.
// Checked in order; evaluation stops at the first hit. The moderation
// backend runs the same checks again so a misbehaving client can't
// skip them.
var bannedPatterns = []*regexp.Regexp{
	// URLs
	regexp.MustCompile(`(?i)https?://\S+`),
	// Emails
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	// North American phone numbers
	regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[2-9]\d{2}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	// Crisis keywords
	regexp.MustCompile(`(?i)\b(?:suicide|kill myself|end my life|die|self harm|self-harm|cut myself|overdose|OD)\b`),
}

// Evaluate reports whether the text matches any banned pattern.
// Flagged posts still reach the moderation queue; they are never
// silently dropped.
func Evaluate(text string) bool {
	for _, pattern := range bannedPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
