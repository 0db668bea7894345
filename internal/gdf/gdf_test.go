package gdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgould/grotto/internal/game"
)

const goodWorldToml = `
format = "GROTTO"
type = "DATA"

[world]
name = "Test Grotto"
description = "A tiny cave."
start = 1
player = "Tester"

[[room]]
number = 1
name = "Cave Entrance"
description = "A dank opening in the rock."

[room.exits]
north = 2

[[room]]
number = 2
name = "Great Hall"
description = "A vaulted chamber."
points = 10

[room.exits]
south = 1

[[room]]
number = 3
name = "Vault"
description = "Gold glitters everywhere."
points = 25

[room.exits]
west = 1

[[item]]
name = "Brass Lamp"
description = "A tarnished old lamp."
location = 1

[[item]]
name = "Rusty Key"
description = "Pitted with age, but solid."
location = 1
action = "USE"
action_result = "The gate swings open to the east."
action_value = "unlock 1 E 3"
action_points = 5

[[item]]
name = "Scroll"
description = "Cramped writing covers it."
location = 2
action = "READ"
action_verb = "PERUSE"
action_result = "A gem clatters to the floor."
action_value = "spawn Gem 1"
action_points = 7
consumed = true

[[item]]
name = "Gem"
description = "It catches the light."
location = 0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func Test_ParseWorldData_goodWorld(t *testing.T) {
	assert := assert.New(t)

	w, err := ParseWorldData([]byte(goodWorldToml))
	if !assert.NoError(err) {
		return
	}

	assert.Equal("Test Grotto", w.Name)
	assert.Equal(1, w.Start)
	assert.Equal("Tester", w.Player)
	assert.Len(w.Rooms, 3)
	assert.Len(w.Items, 4)

	// exits converted, 0/absent meaning no exit
	entrance := w.Room(1)
	dest, ok := entrance.Exit(game.North).Dest()
	assert.True(ok)
	assert.Equal(2, dest)
	assert.False(entrance.Exit(game.East).Exists())

	// action payloads parsed at load
	key := w.ItemByName("Rusty Key")
	assert.Equal(game.EffectUnlock, key.Effect.Kind())
	room, dir, unlockDest := key.Effect.Unlock()
	assert.Equal(1, room)
	assert.Equal(game.East, dir)
	assert.Equal(3, unlockDest)

	scroll := w.ItemByName("Scroll")
	assert.Equal(game.EffectSpawn, scroll.Effect.Kind())
	spawned, spawnRoom := scroll.Effect.Spawn()
	assert.Equal("Gem", spawned)
	assert.Equal(1, spawnRoom)
	assert.True(scroll.ConsumedOnUse)

	// item start locations
	gem, ok := startOf(w, "Gem")
	assert.True(ok)
	assert.True(gem.IsConsumed(), "location 0 starts out of play")

	// the returned world is validated and ready for instances
	assert.NotNil(w.Parser())
}

func startOf(w *game.World, name string) (game.Location, bool) {
	it := w.ItemByName(name)
	if it == nil {
		return game.Location{}, false
	}
	return it.Start, true
}

func Test_ParseWorldData_rejectsBadData(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "wrong format header",
			input: "format = \"TUNA\"\ntype = \"DATA\"\n",
		},
		{
			name:  "wrong type header",
			input: "format = \"GROTTO\"\ntype = \"MANIFEST\"\n",
		},
		{
			name:  "not toml at all",
			input: "{\"format\": \"GROTTO\"}",
		},
		{
			name: "bad action payload",
			input: `
format = "GROTTO"
type = "DATA"

[world]
start = 1

[[room]]
number = 1
name = "Cell"
description = "Bare."

[[item]]
name = "Thing"
description = "A thing."
location = 1
action = "USE"
action_result = "Nothing happens."
action_value = "defenestrate 1 2"
`,
		},
		{
			name: "bad item location",
			input: `
format = "GROTTO"
type = "DATA"

[world]
start = 1

[[room]]
number = 1
name = "Cell"
description = "Bare."

[[item]]
name = "Thing"
description = "A thing."
location = -2
`,
		},
		{
			name: "fails world validation",
			input: `
format = "GROTTO"
type = "DATA"

[world]
start = 99

[[room]]
number = 1
name = "Cell"
description = "Bare."
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := ParseWorldData([]byte(tc.input))
			assert.Error(err)
		})
	}
}

func Test_LoadWorldDataFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "world.gdf", goodWorldToml)

	w, err := LoadWorldDataFile(path)
	assert.NoError(err)
	assert.Equal("Test Grotto", w.Name)

	_, err = LoadWorldDataFile(filepath.Join(dir, "nope.gdf"))
	assert.Error(err)
}

func Test_LoadResourceBundle_dataFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "world.gdf", goodWorldToml)

	w, err := LoadResourceBundle(path)
	assert.NoError(err)
	assert.Equal("Test Grotto", w.Name)
}

func Test_LoadResourceBundle_manifest(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "world.gdf", goodWorldToml)
	manifPath := writeFile(t, dir, "manifest.gdf", `
format = "GROTTO"
type = "MANIFEST"
files = ["world.gdf"]
`)

	w, err := LoadResourceBundle(manifPath)
	assert.NoError(err)
	assert.Equal("Test Grotto", w.Name)
	assert.Len(w.Rooms, 3)
}

func Test_LoadResourceBundle_emptyManifest(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	manifPath := writeFile(t, dir, "manifest.gdf", `
format = "GROTTO"
type = "MANIFEST"
files = []
`)

	_, err := LoadResourceBundle(manifPath)
	assert.ErrorIs(err, ErrManifestEmpty)
}

func Test_LoadResourceBundle_circularManifestsSkipped(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "world.gdf", goodWorldToml)

	// a refers to b and the world; b refers back to a. The cycle is skipped,
	// not fatal.
	writeFile(t, dir, "a.gdf", `
format = "GROTTO"
type = "MANIFEST"
files = ["b.gdf", "world.gdf"]
`)
	aPath := filepath.Join(dir, "a.gdf")
	writeFile(t, dir, "b.gdf", `
format = "GROTTO"
type = "MANIFEST"
files = ["a.gdf"]
`)

	w, err := LoadResourceBundle(aPath)
	assert.NoError(err)
	assert.Equal("Test Grotto", w.Name)
}

func Test_LoadManifestFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.gdf", `
format = "GROTTO"
type = "MANIFEST"
files = ["world.gdf", "more.gdf"]
`)

	manif, err := LoadManifestFile(path)
	assert.NoError(err)
	assert.Equal([]string{"world.gdf", "more.gdf"}, manif.Files)
}

func Test_ScanFileInfo(t *testing.T) {
	assert := assert.New(t)

	info, err := ScanFileInfo([]byte(goodWorldToml))
	assert.NoError(err)
	assert.Equal("GROTTO", info.Format)
	assert.Equal("DATA", info.Type)
}
