package posts

import (
	"fmt"
	"math/rand"

	"starlings/models"
)

// Word pools for generated pen names. Kept short and gentle on purpose;
// aliases appear next to sensitive stories.
var (
	aliasAdjectives = []string{
		"Quiet", "Harbor", "River", "Rain", "Sky",
		"Prairie", "Blue", "Stone", "Salt", "Amber",
	}
	aliasNouns = []string{
		"North", "Finch", "Ember", "Glass", "Cedar",
		"Leaf", "Lantern", "Maple", "Pine", "Ridge",
	}
)

// RandomAlias returns a pen name like "Quiet Ember 482".
func RandomAlias() string {
	return fmt.Sprintf("%s %s %d",
		aliasAdjectives[rand.Intn(len(aliasAdjectives))],
		aliasNouns[rand.Intn(len(aliasNouns))],
		rand.Intn(900)+100,
	)
}

// backfillAliases fills missing aliases in place so no post renders
// without a name.
func backfillAliases(posts []models.Post) {
	for i := range posts {
		if posts[i].Alias == "" {
			posts[i].Alias = RandomAlias()
		}
	}
}
