package moderation_test

import (
	"testing"

	"starlings/moderation"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		flagged bool
	}{
		{
			name:    "plain supportive message",
			text:    "Therapy helped me a lot",
			flagged: false,
		},
		{
			name:    "empty message",
			text:    "",
			flagged: false,
		},
		{
			name:    "url",
			text:    "Check out https://example.com/help for resources",
			flagged: true,
		},
		{
			name:    "uppercase scheme",
			text:    "HTTP://example.com",
			flagged: true,
		},
		{
			name:    "email address",
			text:    "Reach me at someone@example.org anytime",
			flagged: true,
		},
		{
			name:    "dashed phone number",
			text:    "Call me at 416-555-1234",
			flagged: true,
		},
		{
			name:    "parenthesised phone number",
			text:    "My number is (604) 555 0199",
			flagged: true,
		},
		{
			name:    "phone number with country code",
			text:    "+1 514.555.2368 works too",
			flagged: true,
		},
		{
			name:    "digits that are not a phone number",
			text:    "I walked 10000 steps every day for 30 days",
			flagged: false,
		},
		{
			name:    "crisis keyword",
			text:    "I wanted to kill myself before I found help",
			flagged: true,
		},
		{
			name:    "crisis keyword case insensitive",
			text:    "SELF-HARM was part of my past",
			flagged: true,
		},
		{
			name:    "crisis keyword inside a longer word",
			text:    "A soldier I served with checked in on me", // "die" as substring only
			flagged: false,
		},
		{
			name:    "overdose abbreviation as word",
			text:    "after an OD I got support",
			flagged: true,
		},
		{
			name:    "abbreviation inside word",
			text:    "I adopted a dog",
			flagged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.flagged, moderation.Evaluate(tt.text))
		})
	}
}
