package game

import (
	"fmt"
	"math/rand"
)

var firstNames = []string{ //nolint:gochecknoglobals // fixed word list
	"Alex", "Ana", "Bo", "Cleo", "Dani", "Eli", "Finn", "Gia", "Hugo", "Ivy",
	"Jude", "Kai", "Lena", "Milo", "Nia", "Omar", "Pia", "Quinn", "Rae", "Sami",
	"Theo", "Uma", "Vic", "Wren", "Xena", "Yuri", "Zoe",
}

// RandomPlayerName returns a display name such as "Milo87": a first name
// followed by a two-digit year. r may be nil.
func RandomPlayerName(r *rand.Rand) string {
	intn := rand.Intn //nolint:gosec // display names
	if r != nil {
		intn = r.Intn
	}
	return fmt.Sprintf("%s%02d", firstNames[intn(len(firstNames))], intn(100))
}
