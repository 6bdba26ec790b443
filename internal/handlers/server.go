// internal/handlers/server.go
package handlers

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"unoserver/internal/game"
	"unoserver/internal/models"
	"unoserver/internal/room"
)

// Server is the synchronization layer: it translates inbound client requests
// into registry/engine calls and routes the resulting events to the right
// audience, sanitizing game state per recipient.
type Server struct {
	Logger   *logrus.Logger
	Registry *room.Registry

	// EngineRand seeds every engine this server starts. Nil keeps each
	// engine on its own time-seeded source; tests inject a fixed one to
	// rig decks.
	EngineRand *rand.Rand
}

// NewServer wires a server around an injected registry.
func NewServer(logger *logrus.Logger, registry *room.Registry) *Server {
	return &Server{Logger: logger, Registry: registry}
}

// conn is one live client connection. A player's identity is the connection's
// uuid for the connection's whole lifetime; there is no resume after a drop.
type conn struct {
	id  uuid.UUID
	out chan any
}

func (c *conn) send(msg any) {
	select {
	case c.out <- msg:
	default:
	}
}

// Handle processes one inbound request to completion: mutation plus outbound
// event construction happen before it returns, so requests never observe each
// other's partial state.
func (s *Server) Handle(c *conn, msg ClientMessage) {
	switch msg.Type {
	case ReqCreateRoom:
		s.handleCreateRoom(c, msg)
	case ReqJoinRoom:
		s.handleJoinRoom(c, msg)
	case ReqGetRoomState:
		s.handleGetRoomState(c, msg)
	case ReqStartGame:
		s.handleStartGame(c, msg)
	case ReqPlayCard:
		s.handlePlayCard(c, msg)
	case ReqDrawCard:
		s.handleDrawCard(c, msg)
	case ReqDeclareLowHand:
		s.handleDeclareLowHand(c, msg)
	case ReqChat:
		s.handleChat(c, msg)
	case ReqLeaveRoom:
		s.HandleDisconnect(c)
	default:
		s.Logger.Warnf("unknown request type %q from %s", msg.Type, c.id)
		c.send(errEvent("unknown request type"))
	}
}

func (s *Server) handleCreateRoom(c *conn, msg ClientMessage) {
	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		c.send(errEvent("player name is required"))
		return
	}
	host := &room.Member{ID: c.id, Name: name, Out: c.out}
	rm := s.Registry.Create(host)

	rm.Mu.Lock()
	roster := rosterOf(rm)
	rm.Mu.Unlock()

	s.Logger.Infof("room %s created by %s (%s)", rm.Code, name, c.id)
	c.send(roomEvent{Type: EventRoomCreated, RoomCode: rm.Code, Players: roster, IsHost: true})
}

func (s *Server) handleJoinRoom(c *conn, msg ClientMessage) {
	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		c.send(errEvent("player name is required"))
		return
	}
	member := &room.Member{ID: c.id, Name: name, Out: c.out}
	rm, err := s.Registry.Join(msg.RoomCode, member)
	if err != nil {
		s.Logger.Infof("join %q by %s failed: %v", msg.RoomCode, name, err)
		c.send(errEvent(err.Error()))
		return
	}

	rm.Mu.Lock()
	roster := rosterOf(rm)
	isHost := rm.IsHost(c.id)
	c.send(roomEvent{Type: EventRoomJoined, RoomCode: rm.Code, Players: roster, IsHost: isHost})
	rm.Broadcast(roomEvent{Type: EventPlayerJoined, Players: roster, PlayerName: name})
	rm.Mu.Unlock()

	s.Logger.Infof("%s (%s) joined room %s, %d players", name, c.id, rm.Code, len(roster))
}

func (s *Server) handleGetRoomState(c *conn, msg ClientMessage) {
	rm, ok := s.Registry.Get(msg.RoomCode)
	if !ok {
		// Silent by contract: state polls on dead codes get no reply.
		return
	}
	rm.Mu.Lock()
	c.send(roomEvent{Type: EventRoomJoined, RoomCode: rm.Code, Players: rosterOf(rm), IsHost: rm.IsHost(c.id)})
	rm.Mu.Unlock()
}

func (s *Server) handleStartGame(c *conn, msg ClientMessage) {
	rm, ok := s.Registry.Get(msg.RoomCode)
	if !ok {
		c.send(errEvent(room.ErrNotFound.Error()))
		return
	}

	rm.Mu.Lock()
	defer rm.Mu.Unlock()

	if !rm.IsHost(c.id) {
		c.send(errEvent("only the host can start the game"))
		return
	}
	if rm.Engine != nil {
		c.send(errEvent(room.ErrAlreadyStarted.Error()))
		return
	}
	eng := game.NewEngine(s.EngineRand)
	if err := eng.Start(rm.PlayerIDs()); err != nil {
		c.send(errEvent(err.Error()))
		return
	}
	rm.Engine = eng

	s.Logger.Infof("game started in room %s with %d players", rm.Code, len(rm.Members))
	rm.BroadcastEach(func(m *room.Member) any {
		snap := eng.SnapshotFor(m.ID)
		return gameEvent{Type: EventGameStarted, State: &snap}
	})
}

func (s *Server) handlePlayCard(c *conn, msg ClientMessage) {
	rm, eng, ok := s.roomWithEngine(c, msg.RoomCode)
	if !ok {
		return
	}
	defer rm.Mu.Unlock()

	var chosen models.Color
	if msg.ChosenColor != "" {
		color, valid := models.ParseColor(msg.ChosenColor)
		if !valid {
			c.send(errEvent(game.ErrColorRequired.Error()))
			return
		}
		chosen = color
	}
	res, err := eng.PlayCard(c.id, msg.CardIndex, chosen)
	if err != nil {
		c.send(errEvent(err.Error()))
		return
	}

	if res.GameOver {
		s.Logger.Infof("room %s: player %s won", rm.Code, c.id)
	}
	card := res.Card
	rm.BroadcastEach(func(m *room.Member) any {
		snap := eng.SnapshotFor(m.ID)
		return gameEvent{Type: EventCardPlayed, State: &snap, PlayerID: c.id.String(), Card: &card}
	})
}

func (s *Server) handleDrawCard(c *conn, msg ClientMessage) {
	rm, eng, ok := s.roomWithEngine(c, msg.RoomCode)
	if !ok {
		return
	}
	defer rm.Mu.Unlock()

	if _, err := eng.DrawCard(c.id); err != nil {
		c.send(errEvent(err.Error()))
		return
	}

	// Private snapshot first (the drawer sees the new card), then the public
	// update to the whole room.
	snap := eng.SnapshotFor(c.id)
	c.send(gameEvent{Type: EventCardDrawn, State: &snap})
	rm.BroadcastEach(func(m *room.Member) any {
		s := eng.SnapshotFor(m.ID)
		return gameEvent{Type: EventGameState, State: &s}
	})
}

func (s *Server) handleDeclareLowHand(c *conn, msg ClientMessage) {
	rm, eng, ok := s.roomWithEngine(c, msg.RoomCode)
	if !ok {
		return
	}
	defer rm.Mu.Unlock()

	// Advisory: silently ignored unless the hand is exactly one card.
	if !eng.DeclareLowHand(c.id) {
		return
	}
	rm.BroadcastEach(func(m *room.Member) any {
		snap := eng.SnapshotFor(m.ID)
		return gameEvent{Type: EventLowHandDeclared, State: &snap, PlayerID: c.id.String()}
	})
}

func (s *Server) handleChat(c *conn, msg ClientMessage) {
	rm, ok := s.Registry.Get(msg.RoomCode)
	if !ok {
		return
	}
	rm.Mu.Lock()
	defer rm.Mu.Unlock()
	m := rm.Member(c.id)
	if m == nil {
		return
	}
	rm.Broadcast(chatEvent{Type: EventChat, PlayerName: m.Name, Message: msg.Message, Timestamp: time.Now().Unix()})
}

// HandleDisconnect funnels a connection loss (or explicit leave) into the
// registry. This is the only forced state cleanup.
func (s *Server) HandleDisconnect(c *conn) {
	rm, removed := s.Registry.RemoveMember(c.id)
	if removed == nil {
		return
	}
	s.Logger.Infof("player %s (%s) left room %s", removed.Name, removed.ID, rm.Code)

	rm.Mu.Lock()
	defer rm.Mu.Unlock()
	if len(rm.Members) == 0 {
		return // room already reclaimed by the registry
	}
	rm.Broadcast(roomEvent{Type: EventPlayerLeft, Players: rosterOf(rm), PlayerName: removed.Name})
}

// roomWithEngine resolves the room and its running engine and returns with
// the room's mutex held; callers unlock it. The membership check under the
// lock rejects both strangers and requests racing a reclaim of the room
// (RemoveMember empties the roster before deleting), so no action can land
// on a room its sender no longer belongs to.
func (s *Server) roomWithEngine(c *conn, code string) (*room.Room, *game.Engine, bool) {
	rm, ok := s.Registry.Get(code)
	if !ok {
		c.send(errEvent("game not found or not started"))
		return nil, nil, false
	}
	rm.Mu.Lock()
	if rm.Engine == nil || rm.Member(c.id) == nil {
		rm.Mu.Unlock()
		c.send(errEvent("game not found or not started"))
		return nil, nil, false
	}
	return rm, rm.Engine, true
}

func rosterOf(rm *room.Room) []PlayerInfo {
	roster := make([]PlayerInfo, len(rm.Members))
	for i, m := range rm.Members {
		roster[i] = PlayerInfo{ID: m.ID, Name: m.Name}
	}
	return roster
}
