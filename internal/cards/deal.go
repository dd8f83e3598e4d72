package cards

import (
	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/random"
)

// Deal draws one value per category, independently and uniformly.
// Two players dealt from the same catalog may receive identical values.
func Deal(catalog *Catalog, src random.Source) map[models.Category]string {
	hand := make(map[models.Category]string, len(catalog.decks))
	for _, d := range catalog.decks {
		hand[d.Category] = random.Pick(src, d.Values)
	}
	return hand
}
