// internal/game/deck.go
package game

import (
	"math/rand"

	"unoserver/internal/models"
)

// DeckSize is the canonical card count: 76 number cards (one 0, two each of
// 1-9 per color), 24 action cards (two skip/reverse/draw-two per color) and
// 8 wilds (four wild, four wild-draw-four).
const DeckSize = 108

// NewDeck builds the canonical 108-card multiset, unshuffled.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, color := range models.Colors() {
		deck = append(deck, models.Card{Kind: models.KindNumber, Color: color, Number: 0})
		for n := 1; n <= 9; n++ {
			deck = append(deck,
				models.Card{Kind: models.KindNumber, Color: color, Number: n},
				models.Card{Kind: models.KindNumber, Color: color, Number: n},
			)
		}
		for _, kind := range []models.Kind{models.KindSkip, models.KindReverse, models.KindDrawTwo} {
			deck = append(deck,
				models.Card{Kind: kind, Color: color},
				models.Card{Kind: kind, Color: color},
			)
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck,
			models.Card{Kind: models.KindWild},
			models.Card{Kind: models.KindWildDrawFour},
		)
	}
	return deck
}

// shuffle permutes cards in place with Fisher-Yates.
func shuffle(rng *rand.Rand, cards []models.Card) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
