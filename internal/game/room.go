// Package game implements the Grotto turn engine: world graph data, command
// parsing, action resolution, and per-instance game state advancement.
package game

import (
	"fmt"
	"strings"
)

// File room.go includes symbols for holding data on the rooms and the exits
// between them.

// Direction is one of the six directions of travel a room can have an exit
// in.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Up
	Down
)

// Directions lists all travel directions in a fixed order. Room exit storage
// is indexed by this order.
var Directions = []Direction{North, South, East, West, Up, Down}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Short returns the single-letter form of the direction, upper case.
func (d Direction) Short() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	case Up:
		return "U"
	case Down:
		return "D"
	default:
		return "?"
	}
}

// ParseDirection interprets s as a direction. It accepts both the one-letter
// shorthand and the full name, in any case. The second return value is false
// if s is not a direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N", "NORTH":
		return North, true
	case "S", "SOUTH":
		return South, true
	case "E", "EAST":
		return East, true
	case "W", "WEST":
		return West, true
	case "U", "UP":
		return Up, true
	case "D", "DOWN":
		return Down, true
	default:
		return North, false
	}
}

// RoomRef refers to a room by number, or to no room at all. The zero value is
// NoExit. Using RoomRef instead of a raw room number keeps "there is no room
// here" from colliding with any real room number.
type RoomRef struct {
	num int
}

// NoExit is the RoomRef meaning travel is not possible.
var NoExit = RoomRef{}

// RefTo returns a RoomRef pointing at the room with the given number. Room
// numbers are always positive; RefTo(0) or a negative number gives NoExit.
func RefTo(num int) RoomRef {
	if num < 1 {
		return NoExit
	}
	return RoomRef{num: num}
}

// Exists returns whether the ref points at a room at all.
func (r RoomRef) Exists() bool {
	return r.num > 0
}

// Dest returns the number of the room the ref points at. The second return
// value is false for NoExit.
func (r RoomRef) Dest() (int, bool) {
	return r.num, r.num > 0
}

func (r RoomRef) String() string {
	if !r.Exists() {
		return "NoExit"
	}
	return fmt.Sprintf("Room(%d)", r.num)
}

// Room is a scene in the game. Each room is identified by a number unique
// within its world and can have an exit in each of the six directions. The
// room graph may contain cycles; it is not a tree.
type Room struct {
	// Number is how the room is referred to in the game. It must be unique
	// from all other Rooms in the same world.
	Number int

	// Name is the short display name of the room.
	Name string

	// Desc is the long description shown when the player is in the room.
	Desc string

	// Exits holds the destination of travel in each direction, indexed by
	// Direction. A NoExit value means travel that way is not possible (though
	// an item action may unlock it for a single instance).
	Exits [6]RoomRef

	// Points is the score granted the first time an instance's player enters
	// the room. Later visits grant nothing.
	Points int
}

// Exit returns the exit of the room in the given direction.
func (room Room) Exit(d Direction) RoomRef {
	return room.Exits[d]
}

// SetExit sets the exit of the room in the given direction.
func (room *Room) SetExit(d Direction, ref RoomRef) {
	room.Exits[d] = ref
}

// Copy returns a copied Room.
func (room Room) Copy() Room {
	return Room{
		Number: room.Number,
		Name:   room.Name,
		Desc:   room.Desc,
		Exits:  room.Exits,
		Points: room.Points,
	}
}

func (room Room) String() string {
	var exits []string
	for _, d := range Directions {
		if eg := room.Exits[d]; eg.Exists() {
			dest, _ := eg.Dest()
			exits = append(exits, fmt.Sprintf("%s->%d", d.Short(), dest))
		}
	}
	return fmt.Sprintf("Room<%d %q EXITS: %s>", room.Number, room.Name, strings.Join(exits, ", "))
}
