package game

import (
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/dgould/grotto/internal/util"
)

// File snapshot.go converts instance overlays to and from a durable form.
// The world template itself is never serialized; a snapshot only carries the
// per-instance deltas, keyed by the stable integer room numbers and item
// names, so a save taken against a game definition loads back losslessly
// against the same definition.

// snapshotFormatVersion is bumped whenever the binary layout changes.
const snapshotFormatVersion = 1

// SavedUnlock is one persisted exit rewrite.
type SavedUnlock struct {
	Room int
	Dir  Direction
	Dest int
}

// Snapshot is the serializable per-instance overlay: everything about a
// running game that is not part of the world template.
type Snapshot struct {
	PlayerName  string
	CurrentRoom int
	Score       int
	Turns       int
	ClassicMode bool
	ScrollMode  bool

	// Visited holds the numbers of visited rooms, ascending.
	Visited []int

	// ItemLocations maps item name to a location code: the room number if
	// positive, -1 for the inventory, 0 for consumed.
	ItemLocations map[string]int

	// Fired holds the names of items whose actions have fired.
	Fired []string

	// Unlocked holds the exit rewrites applied by unlock effects.
	Unlocked []SavedUnlock

	// History holds the recorded gameplay commands, oldest first.
	History []string
}

// Snapshot captures the instance's current overlay. It takes the instance's
// lock, so it must not be called from inside a turn.
func (inst *Instance) Snapshot() Snapshot {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	snap := Snapshot{
		PlayerName:    inst.PlayerName,
		CurrentRoom:   inst.currentRoom,
		Score:         inst.score,
		Turns:         inst.turns,
		ClassicMode:   inst.classicMode,
		ScrollMode:    inst.scrollMode,
		ItemLocations: make(map[string]int, len(inst.itemLocs)),
		History:       make([]string, len(inst.history)),
	}

	visited := make([]int, 0, len(inst.visited))
	for num := range inst.visited {
		visited = append(visited, num)
	}
	snap.Visited = util.SortedInts(visited)

	for name, loc := range inst.itemLocs {
		snap.ItemLocations[name] = loc.locCode()
	}

	// ordered so two snapshots of the same state encode identically
	snap.Fired = util.OrderedKeys(inst.fired)

	for _, ov := range inst.unlocked {
		snap.Unlocked = append(snap.Unlocked, SavedUnlock{Room: ov.room, Dir: ov.dir, Dest: ov.dest})
	}

	copy(snap.History, inst.history)

	return snap
}

// RestoreInstance rebuilds an Instance from a snapshot against the given
// world template, reusing the given ID. Snapshots referencing rooms or items
// the world does not have are rejected; a stale save never produces a
// half-valid instance.
func RestoreInstance(world *World, id uuid.UUID, snap Snapshot) (*Instance, error) {
	if err := world.Validate(); err != nil {
		return nil, fmt.Errorf("world failed validation: %w", err)
	}

	if world.Room(snap.CurrentRoom) == nil {
		return nil, fmt.Errorf("snapshot: current room %d does not exist in world", snap.CurrentRoom)
	}

	inst := &Instance{
		id:          id,
		world:       world,
		PlayerName:  snap.PlayerName,
		currentRoom: snap.CurrentRoom,
		score:       snap.Score,
		turns:       snap.Turns,
		classicMode: snap.ClassicMode,
		scrollMode:  snap.ScrollMode,
		visited:     make(map[int]bool, len(snap.Visited)),
		itemLocs:    make(map[string]Location, len(world.Items)),
		fired:       make(map[string]bool, len(snap.Fired)),
		history:     make([]string, len(snap.History)),
	}

	for _, num := range snap.Visited {
		if world.Room(num) == nil {
			return nil, fmt.Errorf("snapshot: visited room %d does not exist in world", num)
		}
		inst.visited[num] = true
	}

	// start from the template locations so items the snapshot is silent on
	// still exist, then lay the saved locations over them
	for _, it := range world.Items {
		inst.itemLocs[foldName(it.Name)] = it.Start
	}
	for name, code := range snap.ItemLocations {
		if world.ItemByName(name) == nil {
			return nil, fmt.Errorf("snapshot: item %q does not exist in world", name)
		}
		loc := locationFromCode(code)
		if num, ok := loc.Room(); ok && world.Room(num) == nil {
			return nil, fmt.Errorf("snapshot: item %q is in room %d, which does not exist in world", name, num)
		}
		inst.itemLocs[foldName(name)] = loc
	}

	for _, name := range snap.Fired {
		if world.ItemByName(name) == nil {
			return nil, fmt.Errorf("snapshot: fired item %q does not exist in world", name)
		}
		inst.fired[foldName(name)] = true
	}

	for _, ov := range snap.Unlocked {
		if world.Room(ov.Room) == nil || world.Room(ov.Dest) == nil {
			return nil, fmt.Errorf("snapshot: unlock %d %s %d references a room that does not exist in world", ov.Room, ov.Dir, ov.Dest)
		}
		inst.unlocked = append(inst.unlocked, exitOverride{room: ov.Room, dir: ov.Dir, dest: ov.Dest})
	}

	copy(inst.history, snap.History)

	return inst, nil
}

// MarshalBinary converts the snapshot to a binary form suitable for storage.
func (snap Snapshot) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncInt(snapshotFormatVersion)...)
	enc = append(enc, rezi.EncString(snap.PlayerName)...)
	enc = append(enc, rezi.EncInt(snap.CurrentRoom)...)
	enc = append(enc, rezi.EncInt(snap.Score)...)
	enc = append(enc, rezi.EncInt(snap.Turns)...)
	enc = append(enc, rezi.EncBool(snap.ClassicMode)...)
	enc = append(enc, rezi.EncBool(snap.ScrollMode)...)

	enc = append(enc, rezi.EncInt(len(snap.Visited))...)
	for _, num := range snap.Visited {
		enc = append(enc, rezi.EncInt(num)...)
	}

	locNames := util.OrderedKeys(snap.ItemLocations)
	enc = append(enc, rezi.EncInt(len(locNames))...)
	for _, name := range locNames {
		enc = append(enc, rezi.EncString(name)...)
		enc = append(enc, rezi.EncInt(snap.ItemLocations[name])...)
	}

	enc = append(enc, rezi.EncInt(len(snap.Fired))...)
	for _, name := range snap.Fired {
		enc = append(enc, rezi.EncString(name)...)
	}

	enc = append(enc, rezi.EncInt(len(snap.Unlocked))...)
	for _, ov := range snap.Unlocked {
		enc = append(enc, rezi.EncInt(ov.Room)...)
		enc = append(enc, rezi.EncInt(int(ov.Dir))...)
		enc = append(enc, rezi.EncInt(ov.Dest)...)
	}

	enc = append(enc, rezi.EncInt(len(snap.History))...)
	for _, cmd := range snap.History {
		enc = append(enc, rezi.EncString(cmd)...)
	}

	return enc, nil
}

// UnmarshalBinary restores the snapshot from the binary form produced by
// MarshalBinary.
func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	var ver int
	ver, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("format version: %w", err)
	}
	data = data[n:]
	if ver != snapshotFormatVersion {
		return fmt.Errorf("unsupported snapshot format version %d", ver)
	}

	snap.PlayerName, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("player name: %w", err)
	}
	data = data[n:]

	snap.CurrentRoom, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("current room: %w", err)
	}
	data = data[n:]

	snap.Score, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	data = data[n:]

	snap.Turns, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("turns: %w", err)
	}
	data = data[n:]

	snap.ClassicMode, n, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("classic mode: %w", err)
	}
	data = data[n:]

	snap.ScrollMode, n, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("scroll mode: %w", err)
	}
	data = data[n:]

	var count int
	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("visited count: %w", err)
	}
	data = data[n:]
	snap.Visited = make([]int, count)
	for i := 0; i < count; i++ {
		snap.Visited[i], n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("visited[%d]: %w", i, err)
		}
		data = data[n:]
	}

	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("item location count: %w", err)
	}
	data = data[n:]
	snap.ItemLocations = make(map[string]int, count)
	for i := 0; i < count; i++ {
		var name string
		name, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("item location[%d] name: %w", i, err)
		}
		data = data[n:]

		var code int
		code, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("item location[%d] code: %w", i, err)
		}
		data = data[n:]

		snap.ItemLocations[name] = code
	}

	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("fired count: %w", err)
	}
	data = data[n:]
	snap.Fired = make([]string, count)
	for i := 0; i < count; i++ {
		snap.Fired[i], n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("fired[%d]: %w", i, err)
		}
		data = data[n:]
	}

	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("unlock count: %w", err)
	}
	data = data[n:]
	snap.Unlocked = make([]SavedUnlock, count)
	for i := 0; i < count; i++ {
		var ov SavedUnlock
		ov.Room, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("unlock[%d] room: %w", i, err)
		}
		data = data[n:]

		var dirCode int
		dirCode, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("unlock[%d] direction: %w", i, err)
		}
		data = data[n:]
		ov.Dir = Direction(dirCode)

		ov.Dest, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("unlock[%d] dest: %w", i, err)
		}
		data = data[n:]

		snap.Unlocked[i] = ov
	}

	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("history count: %w", err)
	}
	data = data[n:]
	snap.History = make([]string, count)
	for i := 0; i < count; i++ {
		snap.History[i], n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
		data = data[n:]
	}

	return nil
}
