package moderation

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"starlings/models"
)

// Submission is a share-your-story form before it becomes a post. The
// three prompts are guided lead-ins; at least one of the first two must
// be answered.
type Submission struct {
	PromptA string `json:"promptA"` // one thing that helped me
	PromptB string `json:"promptB"` // a message I'd tell someone else
	PromptC string `json:"promptC"` // a support or system that helped

	Location   *models.LocationCandidate `json:"location"`
	WhatHelped []string                  `json:"what_helped"`

	ConfirmAge       bool `json:"confirmAge"`
	ConfirmNoDetails bool `json:"confirmNoDetails"`
	ConfirmReviewed  bool `json:"confirmReviewed"`
}

// Validate checks the submission the way the share form gates its
// submit button. The first failing check is returned.
func (s Submission) Validate() error {
	if s.Location == nil {
		return errors.New("a location must be selected")
	}
	if strings.TrimSpace(s.PromptA) == "" && strings.TrimSpace(s.PromptB) == "" {
		return errors.New("at least one of the first two prompts must be answered")
	}
	if !s.ConfirmAge {
		return errors.New("the age confirmation must be checked")
	}
	if !s.ConfirmNoDetails {
		return errors.New("the no-identifying-details confirmation must be checked")
	}
	if !s.ConfirmReviewed {
		return errors.New("the review confirmation must be checked")
	}
	for _, tag := range s.WhatHelped {
		if !ValidHelpOption(tag) {
			return errors.New("unknown what-helped tag: " + tag)
		}
	}
	return nil
}

// Message composes the prompts into the single message shown on the
// map. Empty prompts are skipped.
func (s Submission) Message() string {
	var parts []string
	if p := strings.TrimSpace(s.PromptA); p != "" {
		parts = append(parts, "One thing that helped me was "+p+".")
	}
	if p := strings.TrimSpace(s.PromptB); p != "" {
		parts = append(parts, "A message I'd tell someone else is "+p+".")
	}
	if p := strings.TrimSpace(s.PromptC); p != "" {
		parts = append(parts, "A support or system that helped was "+p+".")
	}
	return strings.Join(parts, " ")
}

// BuildPost turns a validated submission into a pending post. The
// flagged bit is set here so the caller can warn the submitter, and the
// backend re-evaluates it regardless.
func (s Submission) BuildPost() models.Post {
	message := s.Message()

	city := "Unknown"
	country := "Unknown"
	var lat, lng float64
	if s.Location != nil {
		if settlement := s.Location.Address.Settlement(); settlement != "" {
			city = settlement
		}
		if s.Location.Address.Country != "" {
			country = s.Location.Address.Country
		}
		lat, _ = strconv.ParseFloat(s.Location.Lat, 64)
		lng, _ = strconv.ParseFloat(s.Location.Lon, 64)
	}

	return models.Post{
		Id:         uuid.NewString(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Status:     models.StatusPending,
		Country:    country,
		City:       city,
		Lat:        lat,
		Lng:        lng,
		Message:    message,
		WhatHelped: s.WhatHelped,
		Flagged:    Evaluate(message),
	}
}
