package models

import "time"

// Lifecycle status of a post. Transitions happen in the moderation
// backend only; the service never mutates a fetched post.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Post is a single anonymous "what helped me" note tied to a city.
// The field names match the moderation backend's sheet columns.
type Post struct {
	Id            string   `json:"id"`
	Timestamp     string   `json:"timestamp"`
	Status        string   `json:"status"`
	Country       string   `json:"country"`
	City          string   `json:"city"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	Message       string   `json:"message"`
	WhatHelped    []string `json:"what_helped"`
	Alias         string   `json:"alias"`
	Flagged       bool     `json:"flagged"`
	RejectReason  string   `json:"reject_reason,omitempty"`
	InternalNotes string   `json:"internal_notes,omitempty"`
}

// CreatedAt parses the post timestamp. Returns the zero time for
// malformed timestamps so callers can sort without error handling.
func (p Post) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Address fragment as returned by the geocoder. Exactly one of
// City/Town/Village is usually set for settlement results.
type Address struct {
	City    string `json:"city,omitempty"`
	Town    string `json:"town,omitempty"`
	Village string `json:"village,omitempty"`
	Country string `json:"country"`
}

// Settlement returns whichever settlement-level name is present.
func (a Address) Settlement() string {
	if a.City != "" {
		return a.City
	}
	if a.Town != "" {
		return a.Town
	}
	return a.Village
}

// LocationCandidate is one entry in a location search result list.
// Lat/Lon are kept string-encoded to match the geocoder wire format.
type LocationCandidate struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
}

// CityCluster groups the posts of one city into a single map marker.
// Derived data, recomputed on every aggregation pass.
type CityCluster struct {
	Id      string   `json:"id"` // city||country composite key
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     float64  `json:"lat"` // running-mean centroid
	Lng     float64  `json:"lng"`
	Count   int      `json:"count"`
	Posts   []Post   `json:"posts"`
	TopTags []string `json:"topTags"`
}

// SubmitResult is the moderation backend's answer to a new submission.
type SubmitResult struct {
	Success bool `json:"success"`
	Flagged bool `json:"flagged"`
}

// CreatePostEvent fired when a new post is submitted
type CreatePostEvent struct {
	Post Post
}

// RefreshEvent fired when the approved feed is refetched
type RefreshEvent struct {
	Count     int   `json:"count"`
	FetchedAt int64 `json:"fetchedAt"`
}
