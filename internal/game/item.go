package game

import (
	"fmt"
	"strconv"
	"strings"
)

// File item.go holds symbols related to items, their locations, and the
// special effects their actions can have.

type locKind int

const (
	locConsumed locKind = iota
	locInventory
	locRoom
)

// Location says where an item currently is: in a room, in the player's
// inventory, or consumed (out of play). The zero value is the consumed state,
// which is also used for items that have not been brought into play yet.
// Using a tagged value instead of reserved room numbers keeps the "not in a
// room" states from ever colliding with a real room number.
type Location struct {
	kind locKind
	room int
}

// InRoom returns the Location for being on the ground in the room with the
// given number.
func InRoom(num int) Location {
	return Location{kind: locRoom, room: num}
}

// InInventory returns the Location for being carried by the player.
func InInventory() Location {
	return Location{kind: locInventory}
}

// Consumed returns the Location for being out of play.
func Consumed() Location {
	return Location{kind: locConsumed}
}

// Room returns the number of the room the location is in. The second return
// value is false if the location is not a room.
func (l Location) Room() (int, bool) {
	return l.room, l.kind == locRoom
}

// IsInventory returns whether the location is the player's inventory.
func (l Location) IsInventory() bool {
	return l.kind == locInventory
}

// IsConsumed returns whether the location is the out-of-play state.
func (l Location) IsConsumed() bool {
	return l.kind == locConsumed
}

func (l Location) String() string {
	switch l.kind {
	case locRoom:
		return fmt.Sprintf("Room(%d)", l.room)
	case locInventory:
		return "Inventory"
	default:
		return "Consumed"
	}
}

// locCode converts a Location to the integer code used in save data. Room
// locations map to their (positive) room number.
func (l Location) locCode() int {
	switch l.kind {
	case locRoom:
		return l.room
	case locInventory:
		return -1
	default:
		return 0
	}
}

// locationFromCode is the inverse of locCode.
func locationFromCode(code int) Location {
	switch {
	case code > 0:
		return InRoom(code)
	case code == -1:
		return InInventory()
	default:
		return Consumed()
	}
}

// EffectKind is the type of special effect an item action has.
type EffectKind int

const (
	// EffectNone means the action only emits its result text.
	EffectNone EffectKind = iota

	// EffectUnlock means the action rewrites one exit of a room to point at a
	// destination room, for the firing instance only.
	EffectUnlock

	// EffectSpawn means the action brings another item into play by placing
	// it in a room, for the firing instance only.
	EffectSpawn
)

// Effect is the parsed form of an item's action payload. It is produced from
// the free-form ActionValue text when a world is loaded so that bad payloads
// are caught at load time rather than mid-turn.
type Effect struct {
	kind EffectKind

	// unlock fields
	room int
	dir  Direction
	dest int

	// spawn fields
	item   string
	toRoom int
}

// Kind returns what type of effect this is.
func (ef Effect) Kind() EffectKind {
	return ef.kind
}

// Unlock returns the room, direction, and destination of an unlock effect.
// The values are meaningless unless Kind() is EffectUnlock.
func (ef Effect) Unlock() (room int, dir Direction, dest int) {
	return ef.room, ef.dir, ef.dest
}

// Spawn returns the item name and target room of a spawn effect. The values
// are meaningless unless Kind() is EffectSpawn.
func (ef Effect) Spawn() (item string, room int) {
	return ef.item, ef.toRoom
}

// UnlockEffect creates an effect that rewrites the given direction exit of
// room to point at dest.
func UnlockEffect(room int, dir Direction, dest int) Effect {
	return Effect{kind: EffectUnlock, room: room, dir: dir, dest: dest}
}

// SpawnEffect creates an effect that places the named item in the given room.
func SpawnEffect(item string, room int) Effect {
	return Effect{kind: EffectSpawn, item: item, toRoom: room}
}

// ParseEffect parses an action payload string into an Effect. The payload
// grammar has two forms:
//
//	unlock ROOM DIR DEST  - rewrite the DIR exit of room ROOM to go to DEST
//	spawn ITEM ROOM       - place the item named ITEM in room ROOM
//
// An empty payload parses to an effect of kind EffectNone. Anything else is
// an error. Cross-references in the parsed effect are not checked here; that
// is done by World.Validate.
func ParseEffect(raw string) (Effect, error) {
	fields := strings.Fields(raw)
	if len(fields) < 1 {
		return Effect{}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "unlock":
		if len(fields) != 4 {
			return Effect{}, fmt.Errorf("unlock payload must be \"unlock ROOM DIR DEST\", not %q", raw)
		}
		room, err := strconv.Atoi(fields[1])
		if err != nil {
			return Effect{}, fmt.Errorf("unlock payload: %q is not a room number", fields[1])
		}
		dir, ok := ParseDirection(fields[2])
		if !ok {
			return Effect{}, fmt.Errorf("unlock payload: %q is not a direction", fields[2])
		}
		dest, err := strconv.Atoi(fields[3])
		if err != nil {
			return Effect{}, fmt.Errorf("unlock payload: %q is not a room number", fields[3])
		}
		return UnlockEffect(room, dir, dest), nil
	case "spawn":
		if len(fields) != 3 {
			return Effect{}, fmt.Errorf("spawn payload must be \"spawn ITEM ROOM\", not %q", raw)
		}
		room, err := strconv.Atoi(fields[2])
		if err != nil {
			return Effect{}, fmt.Errorf("spawn payload: %q is not a room number", fields[2])
		}
		return SpawnEffect(fields[1], room), nil
	default:
		return Effect{}, fmt.Errorf("unknown action payload %q", raw)
	}
}

// Item is an object in the world. Its name is unique within the world and is
// also how players refer to it. An item may carry an action: a verb that,
// when applied to the item, emits result text, optionally applies an Effect,
// and scores ActionPoints exactly once per game instance.
type Item struct {
	// Name is the display name of the item and its canonical identity. It
	// must be unique among all items of the world.
	Name string

	// Description is what is shown when the player LOOKs at the item.
	Description string

	// Start is where the item is at the start of a game instance. Items that
	// start out of play (waiting on a spawn effect) have a consumed Start.
	Start Location

	// Action is the verb that triggers the item's special effect, such as
	// "use" or "open". Empty if the item has no action.
	Action string

	// ActionVerb is an alternate verb accepted for the action, or empty.
	ActionVerb string

	// ActionResult is the text shown when the action fires.
	ActionResult string

	// ActionValue is the raw payload describing the action's effect. It is
	// parsed into Effect at load time.
	ActionValue string

	// ActionPoints is the score granted the first time the action fires for
	// an instance. Repeat firings grant nothing.
	ActionPoints int

	// ConsumedOnUse makes the item leave play when its action first fires.
	ConsumedOnUse bool

	// Effect is the parsed form of ActionValue.
	Effect Effect
}

// HasAction returns whether the item has an action at all.
func (item Item) HasAction() bool {
	return item.Action != ""
}

// TriggeredBy returns whether the given canonical verb fires this item's
// action. Matching is case-insensitive.
func (item Item) TriggeredBy(verb string) bool {
	if !item.HasAction() {
		return false
	}
	if strings.EqualFold(item.Action, verb) {
		return true
	}
	return item.ActionVerb != "" && strings.EqualFold(item.ActionVerb, verb)
}

// Copy returns a copied Item.
func (item Item) Copy() Item {
	return item
}

func (item Item) String() string {
	return fmt.Sprintf("Item(%q @ %s)", item.Name, item.Start)
}
