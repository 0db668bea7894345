package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dgould/grotto/internal/fortune"
	"github.com/dgould/grotto/internal/gerrors"
	"github.com/dgould/grotto/internal/version"
)

// File turn.go holds the turn engine: the component that takes one raw player
// move and produces one result, mutating exactly one instance's state under
// that instance's lock.

// GameMove is the request envelope for one submitted player turn. It is
// constructed by the hosting layer (HTTP server, local client) per turn.
type GameMove struct {
	// InstanceID identifies the running game session the move applies to.
	InstanceID uuid.UUID

	// Move is the raw text the player typed.
	Move string

	// IsConsoleCommand marks the move as a console meta-command regardless of
	// its text. Moves whose text starts with the console prefix are treated
	// as console commands either way.
	IsConsoleCommand bool

	// UseClassicMode and UseScrollMode are the client's display-mode
	// preferences for this turn. The engine records them on the instance and
	// reports a toggle on the result only when one actually changes.
	UseClassicMode bool
	UseScrollMode  bool
}

// GameInfo describes one playable game definition, for the game-selection
// flow.
type GameInfo struct {
	ID          string
	Name        string
	Description string
}

// MapRoom is one visited room in a map payload.
type MapRoom struct {
	Number  int
	Name    string
	Current bool

	// Exits maps a direction name ("north", ...) to the destination room
	// number, with unlock overrides applied. Directions with no exit are
	// absent.
	Exits map[string]int
}

// MapPayload is the explicit room/exit summary returned by the map console
// command. Only rooms the player has visited are included.
type MapPayload struct {
	Rooms []MapRoom
}

// GameMoveResult is the response envelope for one processed move. It is
// constructed once per move, not mutated afterwards, and handed back to the
// hosting layer to render however it likes.
type GameMoveResult struct {
	// RoomName and RoomDescription describe the room the player is in after
	// the move.
	RoomName        string
	RoomDescription string

	// RoomMessage is the narrative fragment of the move: what happened, or
	// the diagnostic when the input could not be understood.
	RoomMessage string

	// ItemsMessage summarizes the items present in the room, in world
	// definition order. Empty when the room is bare.
	ItemsMessage string

	// HealthReport is the player's status line.
	HealthReport string

	// PlayerName is the display name of the player.
	PlayerName string

	// ConsoleOutput is the output of a console meta-command, when the move
	// was one.
	ConsoleOutput string

	// ClassicMode and ScrollMode are set only when the move toggled the
	// corresponding display mode; nil means "no change".
	ClassicMode *bool
	ScrollMode  *bool

	// ClearDisplay asks the client to clear its display before rendering.
	ClearDisplay bool

	// Map carries the room/exit summary when the map console command was
	// given.
	Map *MapPayload

	// History carries the recent gameplay commands when the history console
	// command was given, oldest first.
	History []string

	// AvailableGames is populated only for the game-selection flow (the games
	// console command).
	AvailableGames []GameInfo
}

// FortuneProvider is the engine's view of a fortune source. Implementations
// must be safe for concurrent use and return promptly; the engine makes a
// single synchronous call per console command.
type FortuneProvider interface {
	Random() fortune.Fortune
	TimeBased() fortune.Fortune
	ByID(id int) (fortune.Fortune, bool)
}

// GameLister is the engine's view of the catalog of playable games. It backs
// the game-selection console command.
type GameLister interface {
	ListGames() []GameInfo
}

// Engine owns running game instances and turns moves into results. Distinct
// instances are fully independent: each is guarded by its own lock, and the
// engine's own lock only covers the instance registry.
type Engine struct {
	mu        sync.RWMutex
	instances map[uuid.UUID]*Instance

	fortunes FortuneProvider
	version  func() string
	games    GameLister
}

// EngineOption customizes a new Engine.
type EngineOption func(*Engine)

// WithFortunes sets the fortune source consumed by the fortune console
// command.
func WithFortunes(p FortuneProvider) EngineOption {
	return func(e *Engine) { e.fortunes = p }
}

// WithVersion sets the version identity provider consumed by the version
// console command.
func WithVersion(fn func() string) EngineOption {
	return func(e *Engine) { e.version = fn }
}

// WithGameLister sets the catalog consumed by the games console command.
func WithGameLister(gl GameLister) EngineOption {
	return func(e *Engine) { e.games = gl }
}

// NewEngine creates an Engine with no running instances. Collaborators that
// are not supplied get safe defaults: the built-in fortune corpus, the
// compiled-in version, and an empty game catalog.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		instances: make(map[uuid.UUID]*Instance),
		fortunes:  fortune.New(),
		version:   version.Version,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// StartInstance validates the given world and starts a fresh instance of it,
// registering the instance with the engine. A world that fails validation
// refuses to start rather than surfacing mid-turn failures later.
func (e *Engine) StartInstance(world *World, playerName string) (*Instance, error) {
	if err := world.Validate(); err != nil {
		return nil, fmt.Errorf("world failed validation: %w", err)
	}

	inst, err := NewInstance(world, playerName)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.instances[inst.id] = inst
	e.mu.Unlock()

	return inst, nil
}

// Adopt registers an already-built instance (such as one restored from a
// snapshot) with the engine, replacing any instance with the same ID.
func (e *Engine) Adopt(inst *Instance) {
	e.mu.Lock()
	e.instances[inst.id] = inst
	e.mu.Unlock()
}

// Instance returns the registered instance with the given ID.
func (e *Engine) Instance(id uuid.UUID) (*Instance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst, ok := e.instances[id]
	return inst, ok
}

// Remove unregisters the instance with the given ID. It is not an error if
// no such instance is registered.
func (e *Engine) Remove(id uuid.UUID) {
	e.mu.Lock()
	delete(e.instances, id)
	e.mu.Unlock()
}

// ProcessMove runs one full turn: console routing, parsing, resolution, and
// result assembly. The returned error is only non-nil for engine-level
// problems (an unknown instance); everything a player can cause comes back
// inside the result. A move either applies completely or leaves the instance
// unchanged.
func (e *Engine) ProcessMove(move GameMove) (GameMoveResult, error) {
	e.mu.RLock()
	inst, ok := e.instances[move.InstanceID]
	e.mu.RUnlock()
	if !ok {
		return GameMoveResult{}, fmt.Errorf("no game instance with ID %s", move.InstanceID)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if move.IsConsoleCommand || strings.HasPrefix(strings.TrimSpace(move.Move), ConsolePrefix) {
		// console commands manage their own mode toggles, so the envelope's
		// preference flags are not consulted on this path
		return e.handleConsole(inst, move), nil
	}

	cs := inst.world.Parser().Parse(move.Move)

	var result GameMoveResult
	if !cs.Valid {
		// no state changes on a failed parse; just report
		result = inst.assembleResult(cs.Message)
	} else {
		narrative, err := inst.resolve(cs)
		if err != nil {
			narrative = gerrors.GameMessage(err)
		} else {
			inst.turns++
		}
		inst.recordHistory(move.Move)
		result = inst.assembleResult(narrative)
	}

	e.applyModePrefs(inst, move, &result)

	return result, nil
}

// applyModePrefs records the move's display-mode preferences on the instance
// and marks the result fields only for the modes that actually changed.
func (e *Engine) applyModePrefs(inst *Instance, move GameMove, result *GameMoveResult) {
	if move.UseClassicMode != inst.classicMode {
		inst.classicMode = move.UseClassicMode
		v := move.UseClassicMode
		result.ClassicMode = &v
	}
	if move.UseScrollMode != inst.scrollMode {
		inst.scrollMode = move.UseScrollMode
		v := move.UseScrollMode
		result.ScrollMode = &v
	}
}

// assembleResult builds the standard gameplay result around the given
// narrative fragment, reflecting the instance's state after the move.
func (inst *Instance) assembleResult(narrative string) GameMoveResult {
	room := inst.CurrentRoom()

	return GameMoveResult{
		RoomName:        room.Name,
		RoomDescription: room.Desc,
		RoomMessage:     narrative,
		ItemsMessage:    inst.itemsMessage(),
		HealthReport:    inst.healthReport(),
		PlayerName:      inst.PlayerName,
	}
}
