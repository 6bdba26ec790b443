// internal/room/room.go
package room

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"unoserver/internal/game"
)

// MaxMembers caps a room's roster.
const MaxMembers = 8

// Member is one live connection's presence in a room. Out is the buffered
// outbound channel drained by the connection's write pump.
type Member struct {
	ID   uuid.UUID
	Name string
	Out  chan any
}

// Send pushes a message onto the member's Out channel non-blockingly and
// logs drops (a full channel means a stalled or dying write pump).
func (m *Member) Send(msg any) {
	select {
	case m.Out <- msg:
	default:
		log.Printf("room: out channel for member %s full or closed, dropped message", m.ID)
	}
}

// Room is one isolated game session: a roster plus at most one engine. The
// engine is created by start_game and dies with the room.
type Room struct {
	Code    string
	HostID  uuid.UUID
	Members []*Member
	Engine  *game.Engine

	// Mu serializes every mutation of the room and its engine. The sync
	// layer holds it for the full request, so no request observes another's
	// partial mutation.
	Mu sync.Mutex
}

// Member returns the roster entry for id, or nil.
func (r *Room) Member(id uuid.UUID) *Member {
	for _, m := range r.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// IsHost reports whether id is the room's host.
func (r *Room) IsHost(id uuid.UUID) bool {
	return r.HostID == id
}

// PlayerIDs returns member IDs in join order (the game's turn order).
func (r *Room) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.ID
	}
	return ids
}

// Broadcast sends msg to every member.
func (r *Room) Broadcast(msg any) {
	for _, m := range r.Members {
		m.Send(msg)
	}
}

// BroadcastEach sends a per-member message, letting the caller sanitize the
// payload for each recipient.
func (r *Room) BroadcastEach(build func(m *Member) any) {
	for _, m := range r.Members {
		m.Send(build(m))
	}
}
