// Package names generates human-readable board names for local boards.
package names

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var wordList = []string{
	"Cuchulainn", "Maeve", "BrianBoru", "OscarWilde", "JamesJoyce",
	"WBYeats", "SaintPatrick", "GraceOMalley", "FionnMacCumhaill",
	"Brendan", "Emer", "Deirdre", "Medb", "Liadin", "Colmcille",
	"JonathanSwift", "SamuelBeckett", "SeamusHeaney", "Enya",
	"DoloresKeane", "Niamh", "Aengus", "Balor", "Dagda",
	"MichaelCollins", "SineadOConnor", "VanMorrison", "LiamNeeson",
	"MaryRobinson", "MaureenOHara", "RoddyDoyle", "BrendanGleeson",
	"Hozier", "SaoirseRonan", "GeorgeBernardShaw", "PhilLynott",
}

// Generator produces names. The zero value uses the package-level random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from rng (nil for the default source)
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Words joins numWords distinct words with underscores.
// numWords is clamped to the size of the word list; zero or less yields "".
func (g *Generator) Words(numWords int) string {
	if numWords <= 0 {
		return ""
	}
	if numWords > len(wordList) {
		numWords = len(wordList)
	}

	shuffled := make([]string, len(wordList))
	copy(shuffled, wordList)
	g.shuffle(shuffled)

	return strings.Join(shuffled[:numWords], "_")
}

// BoardName returns a default board title such as "Maeve_Hozier_4821"
func (g *Generator) BoardName() string {
	return fmt.Sprintf("%s_%d", g.Words(2), 1000+g.intN(9000))
}

func (g *Generator) shuffle(words []string) {
	swap := func(i, j int) { words[i], words[j] = words[j], words[i] }
	if g != nil && g.rng != nil {
		g.rng.Shuffle(len(words), swap)
		return
	}
	rand.Shuffle(len(words), swap)
}

func (g *Generator) intN(n int) int {
	if g != nil && g.rng != nil {
		return g.rng.IntN(n)
	}
	return rand.IntN(n)
}

// BoardName generates a board name with the default source
func BoardName() string {
	return (&Generator{}).BoardName()
}
