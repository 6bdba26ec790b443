// internal/game/engine.go
package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"unoserver/internal/models"
)

// Player count bounds for a single game.
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Status is the engine lifecycle stage. Finished is terminal.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Rule and turn violations surfaced to callers. None of them mutate state.
var (
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNotStarted      = errors.New("game has not started")
	ErrGameFinished    = errors.New("game is over")
	ErrPlayerCount     = errors.New("need 2-8 players to start")
	ErrDuplicatePlayer = errors.New("duplicate player in turn order")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidIndex    = errors.New("invalid card index")
	ErrIllegalCard     = errors.New("invalid card - cannot play this card")
	ErrColorRequired   = errors.New("must choose a color for wild card")
	ErrUnknownPlayer   = errors.New("player is not in this game")
)

// Engine is the authoritative state machine for one game. It is not
// goroutine-safe on its own; callers serialize access (the sync layer holds
// the owning room's mutex for the full request).
type Engine struct {
	turnOrder   []uuid.UUID
	current     int
	direction   int
	drawPile    []models.Card // top of pile = end of slice
	discardPile []models.Card
	hands       map[uuid.UUID][]models.Card
	declared    map[uuid.UUID]bool
	pendingDraw int
	activeColor models.Color
	status      Status
	winner      uuid.UUID
	rng         *rand.Rand
}

// NewEngine builds an empty engine. A nil rng gets a time-seeded source;
// tests inject a deterministic one.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		direction: 1,
		hands:     make(map[uuid.UUID][]models.Card),
		declared:  make(map[uuid.UUID]bool),
		status:    StatusNotStarted,
		rng:       rng,
	}
}

// PlayResult reports the outcome of a successful PlayCard.
type PlayResult struct {
	Card models.Card
	// RequiresResolution is set after DrawTwo/WildDrawFour: the next player
	// must resolve the pending draw before playing.
	RequiresResolution bool
	GameOver           bool
}

// DrawResult reports the outcome of a successful DrawCard.
type DrawResult struct {
	Count        int
	DrewPending  bool
	CanPlayDrawn bool
}

// Start deals 7 cards to each player in turn order, flips the starting card
// and picks a random starting player. The engine stays NotStarted on error.
func (e *Engine) Start(players []uuid.UUID) error {
	if e.status != StatusNotStarted {
		return ErrAlreadyStarted
	}
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return ErrPlayerCount
	}
	seen := make(map[uuid.UUID]struct{}, len(players))
	for _, id := range players {
		if _, dup := seen[id]; dup {
			return ErrDuplicatePlayer
		}
		seen[id] = struct{}{}
	}

	e.turnOrder = append([]uuid.UUID(nil), players...)
	e.drawPile = NewDeck()
	shuffle(e.rng, e.drawPile)

	// A fresh 108-card pile cannot run dry while dealing 7 cards to at most
	// 8 players and flipping for the starting card.
	for _, id := range e.turnOrder {
		hand := make([]models.Card, 0, 7)
		for i := 0; i < 7; i++ {
			card, _ := e.drawOne()
			hand = append(hand, card)
		}
		e.hands[id] = hand
	}

	// Flip until a plain number card surfaces; it becomes the sole discard
	// card. Rejected flips go back into the draw pile so the 108-card
	// multiset holds at every instant.
	var rejected []models.Card
	for {
		c, _ := e.drawOne()
		if c.Kind == models.KindNumber {
			e.discardPile = []models.Card{c}
			e.activeColor = c.Color
			break
		}
		rejected = append(rejected, c)
	}
	if len(rejected) > 0 {
		e.drawPile = append(e.drawPile, rejected...)
		shuffle(e.rng, e.drawPile)
	}

	e.current = e.rng.Intn(len(e.turnOrder))
	e.status = StatusInProgress
	return nil
}

// Playable reports whether candidate may be played on top given the active
// color. Wilds are always playable. On a wild top only the active color
// matters; otherwise color, kind or equal number match.
func Playable(candidate, top models.Card, active models.Color) bool {
	if candidate.IsWild() {
		return true
	}
	if top.IsWild() {
		return candidate.Color == active
	}
	if candidate.Color == top.Color {
		return true
	}
	if candidate.Kind == top.Kind && candidate.Kind != models.KindNumber {
		return true
	}
	return candidate.Kind == models.KindNumber && top.Kind == models.KindNumber &&
		candidate.Number == top.Number
}

// PlayCard plays the card at handIndex from player's hand. chosen is required
// for wilds and ignored otherwise.
func (e *Engine) PlayCard(player uuid.UUID, handIndex int, chosen models.Color) (PlayResult, error) {
	if err := e.checkTurn(player); err != nil {
		return PlayResult{}, err
	}
	hand := e.hands[player]
	if handIndex < 0 || handIndex >= len(hand) {
		return PlayResult{}, ErrInvalidIndex
	}
	card := hand[handIndex]
	if !Playable(card, e.topDiscard(), e.activeColor) {
		return PlayResult{}, ErrIllegalCard
	}
	if card.IsWild() && chosen == "" {
		return PlayResult{}, ErrColorRequired
	}

	e.hands[player] = append(hand[:handIndex], hand[handIndex+1:]...)
	delete(e.declared, player) // hand size changed, declaration is stale

	if card.IsWild() {
		card.ChosenColor = chosen
		e.activeColor = chosen
	} else {
		e.activeColor = card.Color
	}
	e.discardPile = append(e.discardPile, card)

	switch card.Kind {
	case models.KindSkip:
		e.advance()
	case models.KindReverse:
		e.direction = -e.direction
		// With two players a reverse hands the turn straight back, i.e. it
		// skips the opponent.
		if len(e.turnOrder) == 2 {
			e.advance()
		}
	case models.KindDrawTwo:
		e.pendingDraw += 2
		e.advance()
		return PlayResult{Card: card, RequiresResolution: true}, nil
	case models.KindWildDrawFour:
		e.pendingDraw += 4
		e.advance()
		return PlayResult{Card: card, RequiresResolution: true}, nil
	}

	if len(e.hands[player]) == 0 {
		e.status = StatusFinished
		e.winner = player
		return PlayResult{Card: card, GameOver: true}, nil
	}

	e.advance()
	return PlayResult{Card: card}, nil
}

// DrawCard resolves a pending penalty draw, or draws a single card. After a
// penalty draw the turn always advances; after a single draw the player keeps
// the turn iff the drawn card is playable. When the piles cannot supply a
// card (everything drawable is in hands) the draw yields nothing: a penalty
// short-draws whatever is available and a plain draw becomes a forfeited
// turn. Count reports what was actually drawn.
func (e *Engine) DrawCard(player uuid.UUID) (DrawResult, error) {
	if err := e.checkTurn(player); err != nil {
		return DrawResult{}, err
	}

	if e.pendingDraw > 0 {
		n := e.pendingDraw
		drawn := 0
		for i := 0; i < n; i++ {
			card, ok := e.drawOne()
			if !ok {
				break // the unserved remainder of the penalty lapses
			}
			e.hands[player] = append(e.hands[player], card)
			drawn++
		}
		e.pendingDraw = 0
		e.advance()
		return DrawResult{Count: drawn, DrewPending: true}, nil
	}

	card, ok := e.drawOne()
	if !ok {
		e.advance()
		return DrawResult{}, nil
	}
	e.hands[player] = append(e.hands[player], card)
	canPlay := Playable(card, e.topDiscard(), e.activeColor)
	if !canPlay {
		e.advance()
	}
	return DrawResult{Count: 1, CanPlayDrawn: canPlay}, nil
}

// DeclareLowHand records an advisory "one card left" marker. It succeeds only
// when the hand has exactly one card and is otherwise a silent no-op.
func (e *Engine) DeclareLowHand(player uuid.UUID) bool {
	if e.status != StatusInProgress {
		return false
	}
	hand, ok := e.hands[player]
	if !ok || len(hand) != 1 {
		return false
	}
	e.declared[player] = true
	return true
}

// Status returns the lifecycle stage.
func (e *Engine) Status() Status { return e.status }

// Winner returns the winning player once the game is finished.
func (e *Engine) Winner() (uuid.UUID, bool) {
	if e.status != StatusFinished {
		return uuid.Nil, false
	}
	return e.winner, true
}

// CurrentPlayer returns the player whose turn it is.
func (e *Engine) CurrentPlayer() uuid.UUID {
	if e.status == StatusNotStarted {
		return uuid.Nil
	}
	return e.turnOrder[e.current]
}

func (e *Engine) checkTurn(player uuid.UUID) error {
	switch e.status {
	case StatusNotStarted:
		return ErrNotStarted
	case StatusFinished:
		return ErrGameFinished
	}
	if _, ok := e.hands[player]; !ok {
		return ErrUnknownPlayer
	}
	if e.turnOrder[e.current] != player {
		return ErrNotYourTurn
	}
	return nil
}

func (e *Engine) topDiscard() models.Card {
	return e.discardPile[len(e.discardPile)-1]
}

// advance moves the turn one step in the current direction.
func (e *Engine) advance() {
	n := len(e.turnOrder)
	e.current = (e.current + e.direction + n) % n
}

// drawOne pops the top of the draw pile, reshuffling the discard pile (minus
// its top card) underneath when the pile runs out. Reports false when no card
// is available: draw pile empty with the discard down to its sole top card,
// which ordinary draws can reach once enough cards accumulate in hands.
func (e *Engine) drawOne() (models.Card, bool) {
	if len(e.drawPile) == 0 {
		e.reshuffleDiscard()
	}
	if len(e.drawPile) == 0 {
		if len(e.discardPile) == 0 {
			// Unreachable while the 108-card invariant holds: the discard
			// pile always retains its top card, so both piles empty means
			// cards leaked.
			panic("game: draw pile and discard pile both empty")
		}
		return models.Card{}, false
	}
	card := e.drawPile[len(e.drawPile)-1]
	e.drawPile = e.drawPile[:len(e.drawPile)-1]
	return card, true
}

// reshuffleDiscard rebuilds the draw pile from every discard card except the
// current top, which stays behind as the sole discard member. Hands are never
// touched. Wilds returning to the pile lose their chosen color.
func (e *Engine) reshuffleDiscard() {
	if len(e.discardPile) <= 1 {
		return
	}
	top := e.discardPile[len(e.discardPile)-1]
	rest := append([]models.Card(nil), e.discardPile[:len(e.discardPile)-1]...)
	for i := range rest {
		rest[i].ChosenColor = ""
	}
	shuffle(e.rng, rest)
	e.drawPile = append(e.drawPile, rest...)
	e.discardPile = []models.Card{top}
}
