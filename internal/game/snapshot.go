// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"unoserver/internal/models"
)

// PlayerView is one player's public state from the perspective of a
// requesting player. Hand is populated only for the requester's own entry;
// everyone else is reduced to a card count.
type PlayerView struct {
	PlayerID        uuid.UUID     `json:"playerId"`
	HandSize        int           `json:"handSize"`
	DeclaredLowHand bool          `json:"declaredLowHand"`
	IsCurrentTurn   bool          `json:"isCurrentTurn"`
	Hand            []models.Card `json:"hand,omitempty"`
}

// Snapshot is a sanitized state view generated for a single recipient.
type Snapshot struct {
	Status          Status        `json:"status"`
	CurrentPlayerID string        `json:"currentPlayerId,omitempty"`
	Direction       int           `json:"direction"`
	DiscardTop      *models.Card  `json:"discardTop,omitempty"`
	ActiveColor     models.Color  `json:"activeColor,omitempty"`
	DrawPileSize    int           `json:"drawPileSize"`
	DiscardSize     int           `json:"discardSize"`
	PendingDraw     int           `json:"pendingDraw"`
	Players         []PlayerView  `json:"players"`
	Winner          string        `json:"winner,omitempty"`
}

// SnapshotFor builds the state view for one recipient. Sanitization is pure:
// full engine state + recipient identity in, that recipient's view out.
func (e *Engine) SnapshotFor(forPlayer uuid.UUID) Snapshot {
	snap := Snapshot{
		Status:       e.status,
		Direction:    e.direction,
		ActiveColor:  e.activeColor,
		DrawPileSize: len(e.drawPile),
		DiscardSize:  len(e.discardPile),
		PendingDraw:  e.pendingDraw,
	}
	if e.status == StatusNotStarted {
		return snap
	}
	snap.CurrentPlayerID = e.turnOrder[e.current].String()
	top := e.topDiscard()
	snap.DiscardTop = &top
	if e.status == StatusFinished {
		snap.Winner = e.winner.String()
	}

	snap.Players = make([]PlayerView, 0, len(e.turnOrder))
	for i, id := range e.turnOrder {
		view := PlayerView{
			PlayerID:        id,
			HandSize:        len(e.hands[id]),
			DeclaredLowHand: e.declared[id],
			IsCurrentTurn:   i == e.current && e.status == StatusInProgress,
		}
		if id == forPlayer {
			view.Hand = append([]models.Card(nil), e.hands[id]...)
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}
