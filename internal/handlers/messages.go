// internal/handlers/messages.go
package handlers

import (
	"github.com/google/uuid"

	"unoserver/internal/game"
	"unoserver/internal/models"
)

// Request types accepted from clients.
const (
	ReqCreateRoom     = "create_room"
	ReqJoinRoom       = "join_room"
	ReqGetRoomState   = "get_room_state"
	ReqStartGame      = "start_game"
	ReqPlayCard       = "play_card"
	ReqDrawCard       = "draw_card"
	ReqDeclareLowHand = "declare_low_hand"
	ReqChat           = "chat"
	ReqLeaveRoom      = "leave_room"
)

// Event types emitted to clients.
const (
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventGameStarted     = "game_started"
	EventCardPlayed      = "card_played"
	EventCardDrawn       = "card_drawn"
	EventGameState       = "game_state"
	EventLowHandDeclared = "low_hand_declared"
	EventChat            = "chat"
	EventError           = "error"
)

// ClientMessage is the union of every inbound request. Fields irrelevant to a
// given type are simply zero.
type ClientMessage struct {
	Type        string `json:"type"`
	PlayerName  string `json:"playerName,omitempty"`
	RoomCode    string `json:"roomCode,omitempty"`
	CardIndex   int    `json:"cardIndex,omitempty"`
	ChosenColor string `json:"chosenColor,omitempty"`
	Message     string `json:"message,omitempty"`
}

// PlayerInfo is one roster entry in room-level events.
type PlayerInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type roomEvent struct {
	Type       string       `json:"type"`
	RoomCode   string       `json:"roomCode,omitempty"`
	Players    []PlayerInfo `json:"players"`
	IsHost     bool         `json:"isHost,omitempty"`
	PlayerName string       `json:"playerName,omitempty"`
}

type gameEvent struct {
	Type     string         `json:"type"`
	State    *game.Snapshot `json:"state"`
	PlayerID string         `json:"playerId,omitempty"`
	Card     *models.Card   `json:"card,omitempty"`
}

type chatEvent struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"ts"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errEvent(msg string) errorEvent {
	return errorEvent{Type: EventError, Message: msg}
}
