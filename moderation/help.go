package moderation

// helpOptions is the fixed list of "what helped" tags a submission can
// carry. The order is the display order.
var helpOptions = []string{
	"Peer support",
	"Therapy",
	"School counsellor",
	"Trusted friend",
	"Routine / hobbies",
	"Boundaries",
	"Support group",
	"Other",
}

// HelpOptions returns the selectable what-helped tags.
func HelpOptions() []string {
	options := make([]string, len(helpOptions))
	copy(options, helpOptions)
	return options
}

// ValidHelpOption reports whether the tag is one of the selectable
// options.
func ValidHelpOption(tag string) bool {
	for _, option := range helpOptions {
		if option == tag {
			return true
		}
	}
	return false
}
