package game

import (
	"fmt"
	"sync"
)

// File world.go holds the world template: the static, per-game-definition
// collection of rooms and items that all instances of a game share. A World
// is loaded once, validated once, and never mutated afterwards; all per-player
// progress lives in Instance overlays.

// World is the static definition of a game: its room graph, its items, and
// the policies that apply to every instance of it. After Validate succeeds,
// a World must be treated as read-only.
type World struct {
	// Name is the display name of the game.
	Name string

	// Description is a short blurb describing the game.
	Description string

	// Start is the number of the room instances begin in.
	Start int

	// Player is the default player name for instances that do not give one.
	Player string

	// RepeatNarration controls what an already-fired item action shows when
	// fired again: the original ActionResult text if true, or a generic
	// "already done" message if false. Score is never granted twice either
	// way.
	RepeatNarration bool

	// Rooms is every room of the world, in definition order.
	Rooms []*Room

	// Items is every item of the world, in definition order. Listings of the
	// items present in a room always follow this order.
	Items []*Item

	roomsByNum map[int]*Room
	itemsByKey map[string]*Item
	parser     *Parser

	buildOnce sync.Once
	buildErr  error
}

// index builds the lookup tables. It is called during validation.
func (w *World) index() {
	w.roomsByNum = make(map[int]*Room, len(w.Rooms))
	for _, r := range w.Rooms {
		w.roomsByNum[r.Number] = r
	}
	w.itemsByKey = make(map[string]*Item, len(w.Items))
	for _, it := range w.Items {
		w.itemsByKey[foldName(it.Name)] = it
	}
}

// Validate checks the referential integrity of the world and prepares it for
// use. A non-nil return means the world must not be used to start instances:
// dangling exits, items located in nonexistent rooms, and bad action payload
// references are all load-time fatal rather than runtime conditions.
//
// Validation runs at most once per World; later calls return the first
// result without touching the world again, so a validated World stays
// read-only even when many instances of it are started concurrently.
func (w *World) Validate() error {
	w.buildOnce.Do(func() {
		w.buildErr = w.validate()
	})
	return w.buildErr
}

func (w *World) validate() error {
	if len(w.Rooms) < 1 {
		return fmt.Errorf("world has no rooms")
	}

	seenRooms := make(map[int]bool, len(w.Rooms))
	for _, r := range w.Rooms {
		if r.Number < 1 {
			return fmt.Errorf("rooms[%q]: number must be a positive integer, not %d", r.Name, r.Number)
		}
		if seenRooms[r.Number] {
			return fmt.Errorf("rooms[%d]: number used by more than one room", r.Number)
		}
		seenRooms[r.Number] = true
		if r.Points < 0 {
			return fmt.Errorf("rooms[%d]: points must not be negative", r.Number)
		}
	}

	seenItems := make(map[string]bool, len(w.Items))
	for _, it := range w.Items {
		if it.Name == "" {
			return fmt.Errorf("items: item with empty name")
		}
		key := foldName(it.Name)
		if seenItems[key] {
			return fmt.Errorf("items[%q]: name used by more than one item", it.Name)
		}
		seenItems[key] = true
		if it.ActionPoints < 0 {
			return fmt.Errorf("items[%q]: action_points must not be negative", it.Name)
		}
	}

	w.index()

	if _, ok := w.roomsByNum[w.Start]; !ok {
		return fmt.Errorf("world: start: no room with number %d exists", w.Start)
	}

	// every non-NoExit exit must point at an existing room
	for _, r := range w.Rooms {
		for _, d := range Directions {
			if dest, ok := r.Exit(d).Dest(); ok {
				if _, exists := w.roomsByNum[dest]; !exists {
					return fmt.Errorf("rooms[%d]: exit %s: no room with number %d exists", r.Number, d, dest)
				}
			}
		}
	}

	// items must start in an existing room or one of the non-room states, and
	// their parsed effects must reference existing things
	for _, it := range w.Items {
		if num, ok := it.Start.Room(); ok {
			if _, exists := w.roomsByNum[num]; !exists {
				return fmt.Errorf("items[%q]: location: no room with number %d exists", it.Name, num)
			}
		}

		if it.HasAction() && it.ActionResult == "" {
			return fmt.Errorf("items[%q]: action %q has no action_result text", it.Name, it.Action)
		}
		if !it.HasAction() && it.ActionValue != "" {
			return fmt.Errorf("items[%q]: action_value given but no action verb", it.Name)
		}

		switch it.Effect.Kind() {
		case EffectUnlock:
			room, _, dest := it.Effect.Unlock()
			if _, exists := w.roomsByNum[room]; !exists {
				return fmt.Errorf("items[%q]: unlock payload: no room with number %d exists", it.Name, room)
			}
			if _, exists := w.roomsByNum[dest]; !exists {
				return fmt.Errorf("items[%q]: unlock payload: no room with number %d exists", it.Name, dest)
			}
		case EffectSpawn:
			spawned, room := it.Effect.Spawn()
			if _, exists := w.itemsByKey[foldName(spawned)]; !exists {
				return fmt.Errorf("items[%q]: spawn payload: no item named %q exists", it.Name, spawned)
			}
			if _, exists := w.roomsByNum[room]; !exists {
				return fmt.Errorf("items[%q]: spawn payload: no room with number %d exists", it.Name, room)
			}
		}
	}

	w.parser = NewParser(w.actionVerbs()...)

	return nil
}

// Room returns the room with the given number, or nil if there is none.
func (w *World) Room(num int) *Room {
	return w.roomsByNum[num]
}

// ItemByName returns the item whose name matches (case-insensitively), or nil
// if there is none.
func (w *World) ItemByName(name string) *Item {
	return w.itemsByKey[foldName(name)]
}

// Parser returns the command parser for the world, whose vocabulary includes
// the built-in verbs plus every action verb any of the world's items carries.
// It is only available after Validate has succeeded.
func (w *World) Parser() *Parser {
	return w.parser
}

// actionVerbs collects the action verbs of all items, in definition order,
// without duplicates.
func (w *World) actionVerbs() []string {
	var verbs []string
	seen := map[string]bool{}

	for _, it := range w.Items {
		for _, v := range []string{it.Action, it.ActionVerb} {
			if v == "" {
				continue
			}
			key := foldName(v)
			if !seen[key] {
				seen[key] = true
				verbs = append(verbs, v)
			}
		}
	}

	return verbs
}
