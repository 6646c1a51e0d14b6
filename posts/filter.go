package posts

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"starlings/models"
)

// Filter returns the posts whose message, city, country or tags contain
// the query, newest first. An empty query keeps every post.
func Filter(posts []models.Post, query string) []models.Post {
	q := strings.ToLower(strings.TrimSpace(query))

	matched := lo.Filter(posts, func(post models.Post, _ int) bool {
		return q == "" || matches(post, q)
	})

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})

	return matched
}

func matches(post models.Post, q string) bool {
	if strings.Contains(strings.ToLower(post.Message), q) ||
		strings.Contains(strings.ToLower(post.City), q) ||
		strings.Contains(strings.ToLower(post.Country), q) {
		return true
	}
	return lo.SomeBy(post.WhatHelped, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}
