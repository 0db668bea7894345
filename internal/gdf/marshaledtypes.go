package gdf

import (
	"fmt"

	"github.com/dgould/grotto/internal/game"
)

// topLevelManifest is the structure of a complete GDF 'MANIFEST' type file.
type topLevelManifest struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

// topLevelWorldData is the top-level structure containing all keys in a
// complete GDF 'DATA' type file.
type topLevelWorldData struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
	World  world  `toml:"world"`
	Rooms  []room `toml:"room"`
	Items  []item `toml:"item"`
}

type world struct {
	Name            string `toml:"name"`
	Description     string `toml:"description"`
	Start           int    `toml:"start"`
	Player          string `toml:"player"`
	RepeatNarration bool   `toml:"repeat_narration"`
}

type room struct {
	Number      int    `toml:"number"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Points      int    `toml:"points"`
	Exits       exits  `toml:"exits"`
}

// exits holds the room's destination numbers by direction. 0 or an absent key
// means no exit that way.
type exits struct {
	North int `toml:"north"`
	South int `toml:"south"`
	East  int `toml:"east"`
	West  int `toml:"west"`
	Up    int `toml:"up"`
	Down  int `toml:"down"`
}

func (tr room) toGameRoom() *game.Room {
	r := &game.Room{
		Number: tr.Number,
		Name:   tr.Name,
		Desc:   tr.Description,
		Points: tr.Points,
	}

	r.SetExit(game.North, game.RefTo(tr.Exits.North))
	r.SetExit(game.South, game.RefTo(tr.Exits.South))
	r.SetExit(game.East, game.RefTo(tr.Exits.East))
	r.SetExit(game.West, game.RefTo(tr.Exits.West))
	r.SetExit(game.Up, game.RefTo(tr.Exits.Up))
	r.SetExit(game.Down, game.RefTo(tr.Exits.Down))

	return r
}

type item struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`

	// Location is the number of the room the item starts in, -1 to start in
	// the player's inventory, or 0 to start out of play (spawnable later).
	Location int `toml:"location"`

	Action        string `toml:"action"`
	ActionVerb    string `toml:"action_verb"`
	ActionResult  string `toml:"action_result"`
	ActionValue   string `toml:"action_value"`
	ActionPoints  int    `toml:"action_points"`
	ConsumedOnUse bool   `toml:"consumed"`
}

func (ti item) toGameItem() (*game.Item, error) {
	it := &game.Item{
		Name:          ti.Name,
		Description:   ti.Description,
		Action:        ti.Action,
		ActionVerb:    ti.ActionVerb,
		ActionResult:  ti.ActionResult,
		ActionValue:   ti.ActionValue,
		ActionPoints:  ti.ActionPoints,
		ConsumedOnUse: ti.ConsumedOnUse,
	}

	switch {
	case ti.Location > 0:
		it.Start = game.InRoom(ti.Location)
	case ti.Location == -1:
		it.Start = game.InInventory()
	case ti.Location == 0:
		it.Start = game.Consumed()
	default:
		return nil, fmt.Errorf("location must be a room number, -1 (inventory), or 0 (out of play), not %d", ti.Location)
	}

	if ti.ActionValue != "" {
		effect, err := game.ParseEffect(ti.ActionValue)
		if err != nil {
			return nil, fmt.Errorf("action_value: %w", err)
		}
		it.Effect = effect
	}

	return it, nil
}
