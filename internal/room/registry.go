// internal/room/registry.go
package room

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Session errors reported back to the requester. None of them mutate state.
var (
	ErrNotFound       = errors.New("room not found")
	ErrAlreadyStarted = errors.New("game already started")
	ErrFull           = errors.New("room is full (max 8 players)")
	ErrAlreadyJoined  = errors.New("already in this room")
)

// Registry owns every live room, keyed by upper-cased code. It is an
// explicit injectable object, not a process-wide singleton.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewRegistry builds an empty registry. A nil rng gets a time-seeded source;
// tests inject a deterministic one.
func NewRegistry(rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rng,
	}
}

// Create mints a collision-free room code and registers a new room with host
// as its sole member.
func (reg *Registry) Create(host *Member) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = reg.generateCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}
	rm := &Room{
		Code:    code,
		HostID:  host.ID,
		Members: []*Member{host},
	}
	reg.rooms[code] = rm
	return rm
}

// Get looks up a live room by code, case-insensitively.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rm, ok := reg.rooms[strings.ToUpper(code)]
	return rm, ok
}

// Join appends member to the room identified by code. It fails with
// ErrNotFound, ErrAlreadyStarted, ErrFull or ErrAlreadyJoined, in that order
// of precedence, without mutating anything. The registry lock is held for the
// whole operation so a concurrent RemoveMember cannot reclaim the room
// between lookup and append.
func (reg *Registry) Join(code string, member *Member) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, ErrNotFound
	}

	rm.Mu.Lock()
	defer rm.Mu.Unlock()
	if rm.Engine != nil {
		return nil, ErrAlreadyStarted
	}
	if len(rm.Members) >= MaxMembers {
		return nil, ErrFull
	}
	if rm.Member(member.ID) != nil {
		return nil, ErrAlreadyJoined
	}
	rm.Members = append(rm.Members, member)
	return rm, nil
}

// RemoveMember scans all rooms and removes id from the first one containing
// it. A room whose roster empties is deleted outright; that is the only
// garbage collection policy. Returns the affected room and the removed
// member, or nils when id was in no room.
func (reg *Registry) RemoveMember(id uuid.UUID) (*Room, *Member) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for code, rm := range reg.rooms {
		rm.Mu.Lock()
		for i, m := range rm.Members {
			if m.ID != id {
				continue
			}
			rm.Members = append(rm.Members[:i], rm.Members[i+1:]...)
			if len(rm.Members) == 0 {
				delete(reg.rooms, code)
			}
			rm.Mu.Unlock()
			return rm, m
		}
		rm.Mu.Unlock()
	}
	return nil, nil
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func (reg *Registry) generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[reg.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
