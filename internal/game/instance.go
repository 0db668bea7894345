package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// File instance.go holds the per-player overlay over a shared world template.
// Exactly one ProcessMove call may mutate an instance at a time; the engine
// enforces that with the instance's own mutex, so two players on different
// instances never contend.

// historyCap is the most recent gameplay commands kept per instance.
const historyCap = 100

// Instance is one player's independently running session of a game. It holds
// everything that differs from the world template: where the player is, where
// the items have moved to, which actions have fired, score, display modes,
// and command history.
type Instance struct {
	mu sync.Mutex

	id    uuid.UUID
	world *World

	// PlayerName is the display name of the player running the instance.
	PlayerName string

	currentRoom int
	score       int
	turns       int

	visited  map[int]bool
	itemLocs map[string]Location
	fired    map[string]bool
	unlocked []exitOverride

	classicMode bool
	scrollMode  bool

	history []string
}

// exitOverride is an exit rewrite applied by an unlock effect. Overrides
// belong to the instance, never to the shared world template.
type exitOverride struct {
	room int
	dir  Direction
	dest int
}

// NewInstance creates a fresh Instance of the given world with a new ID. The
// world must have passed Validate; NewInstance double-checks the start room
// and refuses to create an instance on a world that has not been prepared.
func NewInstance(world *World, playerName string) (*Instance, error) {
	if world.Room(world.Start) == nil {
		return nil, fmt.Errorf("world has not been validated, or start room %d does not exist", world.Start)
	}

	if playerName == "" {
		playerName = world.Player
	}
	if playerName == "" {
		playerName = "Adventurer"
	}

	inst := &Instance{
		id:          uuid.New(),
		world:       world,
		PlayerName:  playerName,
		currentRoom: world.Start,
		visited:     make(map[int]bool),
		itemLocs:    make(map[string]Location, len(world.Items)),
		fired:       make(map[string]bool),
	}

	for _, it := range world.Items {
		inst.itemLocs[foldName(it.Name)] = it.Start
	}

	// entering the start room counts as the first visit
	inst.visited[world.Start] = true
	inst.score += world.Room(world.Start).Points

	return inst, nil
}

// ID returns the instance's identifier.
func (inst *Instance) ID() uuid.UUID {
	return inst.id
}

// World returns the shared world template the instance runs on.
func (inst *Instance) World() *World {
	return inst.world
}

// CurrentRoom returns the room the player is currently in.
func (inst *Instance) CurrentRoom() *Room {
	return inst.world.Room(inst.currentRoom)
}

// Score returns the instance's current score.
func (inst *Instance) Score() int {
	return inst.score
}

// Turns returns how many gameplay moves the instance has processed.
func (inst *Instance) Turns() int {
	return inst.turns
}

// Visited returns whether the player has been in the room with the given
// number.
func (inst *Instance) Visited(num int) bool {
	return inst.visited[num]
}

// ItemLocation returns the current location of the named item. The second
// return value is false if no such item exists in the world.
func (inst *Instance) ItemLocation(name string) (Location, bool) {
	loc, ok := inst.itemLocs[foldName(name)]
	return loc, ok
}

// ActionFired returns whether the named item's action has already fired for
// this instance.
func (inst *Instance) ActionFired(name string) bool {
	return inst.fired[foldName(name)]
}

// ClassicMode returns the instance's recorded classic-display preference.
func (inst *Instance) ClassicMode() bool {
	return inst.classicMode
}

// ScrollMode returns the instance's recorded scroll-display preference.
func (inst *Instance) ScrollMode() bool {
	return inst.scrollMode
}

// exitFrom gives the effective exit of a room in a direction for this
// instance: any unlock override wins over the template.
func (inst *Instance) exitFrom(room *Room, d Direction) RoomRef {
	for _, ov := range inst.unlocked {
		if ov.room == room.Number && ov.dir == d {
			return RefTo(ov.dest)
		}
	}
	return room.Exit(d)
}

// moveTo puts the player in the room with the given number and awards the
// room's points if this is the first visit. Callers must have already checked
// that the room exists.
func (inst *Instance) moveTo(num int) {
	inst.currentRoom = num
	if !inst.visited[num] {
		inst.visited[num] = true
		inst.score += inst.world.Room(num).Points
	}
}

// itemsInRoom returns the items currently on the ground in the room with the
// given number, in world definition order.
func (inst *Instance) itemsInRoom(num int) []*Item {
	var items []*Item
	for _, it := range inst.world.Items {
		loc := inst.itemLocs[foldName(it.Name)]
		if r, ok := loc.Room(); ok && r == num {
			items = append(items, it)
		}
	}
	return items
}

// itemsInInventory returns the items the player is carrying, in world
// definition order.
func (inst *Instance) itemsInInventory() []*Item {
	var items []*Item
	for _, it := range inst.world.Items {
		if inst.itemLocs[foldName(it.Name)].IsInventory() {
			items = append(items, it)
		}
	}
	return items
}

// recordHistory appends a raw gameplay command to the instance's history,
// dropping the oldest entry once the cap is hit.
func (inst *Instance) recordHistory(raw string) {
	inst.history = append(inst.history, raw)
	if len(inst.history) > historyCap {
		inst.history = inst.history[len(inst.history)-historyCap:]
	}
}

// History returns a copy of the recorded gameplay commands, oldest first.
func (inst *Instance) History() []string {
	out := make([]string, len(inst.history))
	copy(out, inst.history)
	return out
}

// healthReport derives the player's status line from the running state. There
// is no damage model; the report reflects progress instead.
func (inst *Instance) healthReport() string {
	visitedCount := len(inst.visited)

	var condition string
	switch {
	case inst.turns == 0:
		condition = "fresh and ready to explore"
	case inst.score >= 100:
		condition = "triumphant"
	case inst.score >= 25:
		condition = "in high spirits"
	case visitedCount > 3:
		condition = "a little footsore, but fine"
	default:
		condition = "in perfect health"
	}

	return fmt.Sprintf("%s is %s. Score: %d. Moves: %d.", inst.PlayerName, condition, inst.score, inst.turns)
}
