package posts

import (
	"time"

	"starlings/models"
)

type seedEntry struct {
	id, city   string
	lat, lng   float64
	message    string
	whatHelped []string
	alias      string
}

// Bundled fallback notes shown when the moderation backend is
// unreachable and no snapshot is persisted. All Canadian hub cities so
// the map never renders empty.
var seedEntries = []seedEntry{
	{
		id: "seed-1", city: "Toronto", lat: 43.6532, lng: -79.3832,
		message:    "Building a consistent morning routine really helped my mental health. Remember, you don't have to carry the weight of the world all at once.",
		whatHelped: []string{"Routine / hobbies", "Peer support"},
		alias:      "Quiet North",
	},
	{
		id: "seed-1b", city: "Toronto", lat: 43.6532, lng: -79.3832,
		message:    "Peer support groups reminded me I wasn't alone. If you can, lean on the people who show up for you.",
		whatHelped: []string{"Peer support", "Support group"},
		alias:      "Harbor Finch",
	},
	{
		id: "seed-1c", city: "Toronto", lat: 43.6532, lng: -79.3832,
		message:    "A trusted friend helped me keep going on the hard days. You deserve people who listen.",
		whatHelped: []string{"Trusted friend", "Boundaries"},
		alias:      "River Ember",
	},
	{
		id: "seed-2", city: "Vancouver", lat: 49.2827, lng: -123.1207,
		message:    "Connecting with others who understand exactly what I'm going through changed everything. You are worthy of peace and support.",
		whatHelped: []string{"Support group", "Trusted friend"},
		alias:      "Rain Glass",
	},
	{
		id: "seed-2b", city: "Vancouver", lat: 49.2827, lng: -123.1207,
		message:    "Therapy and small routines helped me build steadier days. You deserve care that fits you.",
		whatHelped: []string{"Therapy", "Routine / hobbies"},
		alias:      "Sky Cedar",
	},
	{
		id: "seed-2c", city: "Vancouver", lat: 49.2827, lng: -123.1207,
		message:    "A school counsellor helped me find words for what I was feeling. It's okay to ask for help.",
		whatHelped: []string{"School counsellor"},
		alias:      "Harbor Mist",
	},
	{
		id: "seed-3", city: "Calgary", lat: 51.0447, lng: -114.0719,
		message:    "Journaling my thoughts helped me process the harder days. It's okay to not be okay, but it's even better to reach out when you're ready.",
		whatHelped: []string{"Routine / hobbies", "Boundaries"},
		alias:      "Prairie Leaf",
	},
	{
		id: "seed-7", city: "Calgary", lat: 51.0447, lng: -114.0719,
		message:    "Peer support and therapy helped me rebuild trust in myself. You are stronger than you feel.",
		whatHelped: []string{"Peer support", "Therapy"},
		alias:      "Prairie Star",
	},
	{
		id: "seed-7b", city: "Calgary", lat: 51.0447, lng: -114.0719,
		message:    "A trusted friend and clear boundaries helped me feel safe again.",
		whatHelped: []string{"Trusted friend", "Boundaries"},
		alias:      "Amber Ridge",
	},
	{
		id: "seed-4", city: "Montreal", lat: 45.5017, lng: -73.5673,
		message:    "Therapy gave me the tools to navigate my family situation. Asking for help is the bravest thing you can do.",
		whatHelped: []string{"Therapy", "Boundaries"},
		alias:      "Blue Lantern",
	},
	{
		id: "seed-4b", city: "Montreal", lat: 45.5017, lng: -73.5673,
		message:    "A support group gave me a place to be honest. You are not alone in this.",
		whatHelped: []string{"Support group", "Peer support"},
		alias:      "Stone Maple",
	},
	{
		id: "seed-6", city: "Montreal", lat: 45.5017, lng: -73.5673,
		message:    "Setting boundaries with family and leaning on a trusted friend gave me space to breathe.",
		whatHelped: []string{"Trusted friend", "Boundaries"},
		alias:      "Quiet Bloom",
	},
	{
		id: "seed-5", city: "Halifax", lat: 44.6488, lng: -63.5752,
		message:    "Talking to my school counsellor made me realize my voice matters. You are not alone in this journey.",
		whatHelped: []string{"School counsellor", "Peer support"},
		alias:      "Harbor Pine",
	},
	{
		id: "seed-5b", city: "Halifax", lat: 44.6488, lng: -63.5752,
		message:    "Routine and hobbies gave my days structure again. Little steps still count.",
		whatHelped: []string{"Routine / hobbies"},
		alias:      "Salt Glow",
	},
}

// SeedPosts materializes the bundled notes with fresh timestamps,
// staggered an hour apart so recency ordering stays stable.
func SeedPosts() []models.Post {
	now := time.Now().UTC()
	posts := make([]models.Post, 0, len(seedEntries))
	for i, entry := range seedEntries {
		posts = append(posts, models.Post{
			Id:         entry.id,
			Timestamp:  now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
			Status:     models.StatusApproved,
			Country:    "Canada",
			City:       entry.city,
			Lat:        entry.lat,
			Lng:        entry.lng,
			Message:    entry.message,
			WhatHelped: entry.whatHelped,
			Alias:      entry.alias,
		})
	}
	return posts
}
