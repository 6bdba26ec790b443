// internal/models/card.go
package models

import "encoding/json"

// Kind identifies the face of a card.
type Kind string

const (
	KindNumber       Kind = "number"
	KindSkip         Kind = "skip"
	KindReverse      Kind = "reverse"
	KindDrawTwo      Kind = "draw2"
	KindWild         Kind = "wild"
	KindWildDrawFour Kind = "wild4"
)

// Color is one of the four playable card colors.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

// Colors lists the four colors in deck-building order.
func Colors() []Color {
	return []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}
}

// ParseColor validates a client-supplied color string.
func ParseColor(s string) (Color, bool) {
	switch Color(s) {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return Color(s), true
	}
	return "", false
}

// Card is an immutable deck card. Color is empty for wilds until played;
// ChosenColor is set only once a wild has hit the discard pile. Number is
// meaningful only when Kind == KindNumber.
type Card struct {
	Kind        Kind
	Color       Color
	Number      int
	ChosenColor Color
}

// IsWild reports whether the card carries no native color.
func (c Card) IsWild() bool {
	return c.Kind == KindWild || c.Kind == KindWildDrawFour
}

type cardJSON struct {
	Kind        Kind  `json:"kind"`
	Color       Color `json:"color,omitempty"`
	Number      *int  `json:"number,omitempty"`
	ChosenColor Color `json:"chosenColor,omitempty"`
}

// MarshalJSON emits the wire shape: color only for colored kinds, number only
// for number cards (zero is a real card, so omitempty alone won't do).
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{Kind: c.Kind, Color: c.Color, ChosenColor: c.ChosenColor}
	if c.Kind == KindNumber {
		n := c.Number
		out.Number = &n
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a card from its wire shape.
func (c *Card) UnmarshalJSON(data []byte) error {
	var in cardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Kind = in.Kind
	c.Color = in.Color
	c.ChosenColor = in.ChosenColor
	c.Number = 0
	if in.Number != nil {
		c.Number = *in.Number
	}
	return nil
}
