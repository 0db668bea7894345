package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testWorld builds a small but complete world used across the package tests:
//
//	room 1 (Cave Entrance) --N--> room 2 (Great Hall, 10 pts)
//	room 3 (Vault, 25 pts) is only reachable after using the Rusty Key,
//	which rewrites room 1's east exit.
//
// Items: the Brass Lamp sits in room 1 with no action; the Rusty Key sits in
// room 1 and unlocks room 1's east exit to room 3 for 5 points; the Scroll
// sits in room 2, fires on READ or PERUSE for 7 points, spawns the Gem into
// room 1, and is consumed when read. The Gem starts out of play.
func testWorld() *World {
	entrance := &Room{Number: 1, Name: "Cave Entrance", Desc: "A dank opening in the rock."}
	entrance.SetExit(North, RefTo(2))

	hall := &Room{Number: 2, Name: "Great Hall", Desc: "A vaulted chamber.", Points: 10}
	hall.SetExit(South, RefTo(1))

	vault := &Room{Number: 3, Name: "Vault", Desc: "Gold glitters everywhere.", Points: 25}
	vault.SetExit(West, RefTo(1))

	return &World{
		Name:        "Test Grotto",
		Description: "A tiny cave for exercising the engine.",
		Start:       1,
		Player:      "Tester",
		Rooms:       []*Room{entrance, hall, vault},
		Items: []*Item{
			{
				Name:        "Brass Lamp",
				Description: "A tarnished old lamp.",
				Start:       InRoom(1),
			},
			{
				Name:         "Rusty Key",
				Description:  "Pitted with age, but solid.",
				Start:        InRoom(1),
				Action:       "USE",
				ActionResult: "The key turns with a screech and a gate swings open to the east.",
				ActionPoints: 5,
				Effect:       UnlockEffect(1, East, 3),
			},
			{
				Name:          "Scroll",
				Description:   "Cramped writing covers it.",
				Start:         InRoom(2),
				Action:        "READ",
				ActionVerb:    "PERUSE",
				ActionResult:  "The words shimmer and a gem clatters to the cave floor behind you.",
				ActionPoints:  7,
				ConsumedOnUse: true,
				Effect:        SpawnEffect("Gem", 1),
			},
			{
				Name:        "Gem",
				Description: "It catches the light beautifully.",
				Start:       Consumed(),
			},
		},
	}
}

func Test_Validate_acceptsGoodWorld(t *testing.T) {
	assert := assert.New(t)

	w := testWorld()

	assert.NoError(w.Validate())
	assert.NotNil(w.Parser())
	assert.NotNil(w.Room(1))
	assert.NotNil(w.ItemByName("rusty key"))
}

func Test_Validate_runsOnlyOnce(t *testing.T) {
	assert := assert.New(t)

	w := testWorld()

	assert.NoError(w.Validate())
	p := w.Parser()

	// a second call must not rebuild anything; the same world pointer is
	// shared by every live instance of the game
	assert.NoError(w.Validate())
	assert.Same(p, w.Parser())
}

func Test_Validate_rejectsBadWorlds(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(w *World)
	}{
		{
			name: "no rooms",
			mutate: func(w *World) {
				w.Rooms = nil
			},
		},
		{
			name: "non-positive room number",
			mutate: func(w *World) {
				w.Rooms[0].Number = 0
			},
		},
		{
			name: "duplicate room number",
			mutate: func(w *World) {
				w.Rooms[1].Number = 1
			},
		},
		{
			name: "negative room points",
			mutate: func(w *World) {
				w.Rooms[1].Points = -10
			},
		},
		{
			name: "start room does not exist",
			mutate: func(w *World) {
				w.Start = 99
			},
		},
		{
			name: "dangling exit",
			mutate: func(w *World) {
				w.Rooms[0].SetExit(Down, RefTo(42))
			},
		},
		{
			name: "duplicate item name differing only by case",
			mutate: func(w *World) {
				w.Items[0].Name = "GEM"
			},
		},
		{
			name: "item starts in nonexistent room",
			mutate: func(w *World) {
				w.Items[0].Start = InRoom(42)
			},
		},
		{
			name: "negative action points",
			mutate: func(w *World) {
				w.Items[1].ActionPoints = -1
			},
		},
		{
			name: "action without result text",
			mutate: func(w *World) {
				w.Items[1].ActionResult = ""
			},
		},
		{
			name: "unlock payload references missing room",
			mutate: func(w *World) {
				w.Items[1].Effect = UnlockEffect(1, East, 42)
			},
		},
		{
			name: "spawn payload references missing item",
			mutate: func(w *World) {
				w.Items[2].Effect = SpawnEffect("Crown", 1)
			},
		},
		{
			name: "spawn payload references missing room",
			mutate: func(w *World) {
				w.Items[2].Effect = SpawnEffect("Gem", 42)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := testWorld()
			tc.mutate(w)

			assert.Error(w.Validate())
		})
	}
}

func Test_Validate_buildsParserWithActionVerbs(t *testing.T) {
	assert := assert.New(t)

	w := testWorld()
	assert.NoError(w.Validate())

	cs := w.Parser().Parse("peruse scroll")
	assert.True(cs.Valid)
	assert.Equal("PERUSE", cs.Command)

	cs = w.Parser().Parse("read scroll")
	assert.True(cs.Valid)
	assert.Equal("READ", cs.Command)
}
