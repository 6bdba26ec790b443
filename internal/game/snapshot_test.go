// internal/game/snapshot_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unoserver/internal/models"
)

func TestSnapshotHidesOtherHands(t *testing.T) {
	players := newPlayers(3)
	e := NewEngine(rand.New(rand.NewSource(3)))
	require.NoError(t, e.Start(players))

	snap := e.SnapshotFor(players[0])
	require.Len(t, snap.Players, 3)
	for _, pv := range snap.Players {
		assert.Equal(t, 7, pv.HandSize)
		if pv.PlayerID == players[0] {
			assert.Len(t, pv.Hand, 7, "recipient sees their own cards")
		} else {
			assert.Nil(t, pv.Hand, "other hands are reduced to counts")
		}
	}
}

func TestSnapshotReflectsEngineState(t *testing.T) {
	players := newPlayers(2)
	e := riggedEngine(players, red(5), []models.Card{blue(5), red(7)}, []models.Card{yellow(1)})
	e.drawPile = []models.Card{green(1), green(2)}
	e.pendingDraw = 2

	snap := e.SnapshotFor(players[1])
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, players[0].String(), snap.CurrentPlayerID)
	assert.Equal(t, 1, snap.Direction)
	require.NotNil(t, snap.DiscardTop)
	assert.Equal(t, red(5), *snap.DiscardTop)
	assert.Equal(t, models.ColorRed, snap.ActiveColor)
	assert.Equal(t, 2, snap.DrawPileSize)
	assert.Equal(t, 1, snap.DiscardSize)
	assert.Equal(t, 2, snap.PendingDraw)
	assert.Empty(t, snap.Winner)

	assert.True(t, snap.Players[0].IsCurrentTurn)
	assert.False(t, snap.Players[1].IsCurrentTurn)
}

func TestSnapshotBeforeStart(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	snap := e.SnapshotFor(newPlayers(1)[0])
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Empty(t, snap.CurrentPlayerID)
	assert.Nil(t, snap.DiscardTop)
	assert.Empty(t, snap.Players)
}

func TestSnapshotAfterWin(t *testing.T) {
	players := newPlayers(2)
	e := riggedEngine(players, red(5), []models.Card{red(7)}, []models.Card{yellow(1)})
	_, err := e.PlayCard(players[0], 0, "")
	require.NoError(t, err)

	snap := e.SnapshotFor(players[1])
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, players[0].String(), snap.Winner)
	for _, pv := range snap.Players {
		assert.False(t, pv.IsCurrentTurn, "no one is on turn after the game ends")
	}
}

func TestSnapshotHandIsACopy(t *testing.T) {
	players := newPlayers(2)
	e := riggedEngine(players, red(5), []models.Card{red(7), blue(3)}, []models.Card{yellow(1)})

	snap := e.SnapshotFor(players[0])
	snap.Players[0].Hand[0] = green(9)
	assert.Equal(t, red(7), e.hands[players[0]][0], "mutating a snapshot must not touch engine state")
}
