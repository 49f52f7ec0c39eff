package models

import "math/rand/v2"

// InsightPrompts are the reflective questions offered while looking at a note
var InsightPrompts = []string{
	"What is this really about?",
	"What assumptions am I making?",
	"What haven't I tested yet?",
	"If I ignored what I know, where would I start?",
	"What's the smallest step I could take?",
	"What's one question I'm avoiding?",
	"What if I had no fear around this?",
	"Why do I care about this right now?",
	"What would I say to a friend in the same spot?",
	"What's true but uncomfortable here?",
}

// RandomPrompt returns one of the insight prompts
func RandomPrompt() string {
	return InsightPrompts[rand.IntN(len(InsightPrompts))]
}
