package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// playedInstance drives a fixture instance through a bit of everything that a
// snapshot has to carry: movement, item juggling, a fired unlock action, and
// a display-mode toggle.
func playedInstance(t *testing.T) (*Engine, *Instance) {
	t.Helper()

	e, inst, move := startTestGame(t)

	move("take lamp")
	move("use key")
	move("e")
	move("drop lamp")
	move("/classic")

	return e, inst
}

func Test_Snapshot_capturesOverlay(t *testing.T) {
	assert := assert.New(t)

	_, inst := playedInstance(t)

	snap := inst.Snapshot()

	assert.Equal("Rose", snap.PlayerName)
	assert.Equal(3, snap.CurrentRoom)
	assert.Equal(5+25, snap.Score)
	assert.Equal(4, snap.Turns)
	assert.Equal([]int{1, 3}, snap.Visited)
	assert.Equal([]string{"rusty key"}, snap.Fired)
	assert.Equal([]SavedUnlock{{Room: 1, Dir: East, Dest: 3}}, snap.Unlocked)
	assert.Equal([]string{"take lamp", "use key", "e", "drop lamp"}, snap.History)
	assert.True(snap.ClassicMode)
	assert.False(snap.ScrollMode)

	assert.Equal(3, snap.ItemLocations["brass lamp"], "dropped in the vault")
	assert.Equal(1, snap.ItemLocations["rusty key"], "never picked up")
	assert.Equal(2, snap.ItemLocations["scroll"])
	assert.Equal(0, snap.ItemLocations["gem"], "still out of play")
}

func Test_Snapshot_binaryRoundTrip(t *testing.T) {
	assert := assert.New(t)

	_, inst := playedInstance(t)
	snap := inst.Snapshot()

	data, err := snap.MarshalBinary()
	assert.NoError(err)

	var decoded Snapshot
	assert.NoError(decoded.UnmarshalBinary(data))

	assert.Equal(snap, decoded)
}

func Test_Snapshot_binaryDeterministic(t *testing.T) {
	assert := assert.New(t)

	_, inst := playedInstance(t)

	first, err := inst.Snapshot().MarshalBinary()
	assert.NoError(err)

	for i := 0; i < 5; i++ {
		again, err := inst.Snapshot().MarshalBinary()
		assert.NoError(err)
		assert.Equal(first, again)
	}
}

func Test_RestoreInstance_resumesPlay(t *testing.T) {
	assert := assert.New(t)

	e, inst := playedInstance(t)
	snap := inst.Snapshot()

	restored, err := RestoreInstance(testWorld(), inst.ID(), snap)
	assert.NoError(err)

	assert.Equal(inst.ID(), restored.ID())
	assert.Equal("Rose", restored.PlayerName)
	assert.Equal(3, restored.CurrentRoom().Number)
	assert.Equal(5+25, restored.Score())
	assert.Equal(4, restored.Turns())
	assert.True(restored.ClassicMode())
	assert.True(restored.ActionFired("Rusty Key"))

	loc, ok := restored.ItemLocation("Brass Lamp")
	assert.True(ok)
	num, _ := loc.Room()
	assert.Equal(3, num)

	// the unlock override survives: leave the vault and come back in
	e.Adopt(restored)
	result, err := e.ProcessMove(GameMove{InstanceID: restored.ID(), Move: "w", UseClassicMode: true})
	assert.NoError(err)
	assert.Equal("Cave Entrance", result.RoomName)

	result, err = e.ProcessMove(GameMove{InstanceID: restored.ID(), Move: "e", UseClassicMode: true})
	assert.NoError(err)
	assert.Equal("Vault", result.RoomName)
	assert.Equal(5+25, restored.Score(), "revisits still pay nothing after a restore")
}

func Test_RestoreInstance_rejectsStaleSnapshots(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(snap *Snapshot)
	}{
		{
			name: "current room missing",
			mutate: func(snap *Snapshot) {
				snap.CurrentRoom = 99
			},
		},
		{
			name: "visited room missing",
			mutate: func(snap *Snapshot) {
				snap.Visited = append(snap.Visited, 99)
			},
		},
		{
			name: "unknown item",
			mutate: func(snap *Snapshot) {
				snap.ItemLocations["crown"] = 1
			},
		},
		{
			name: "item in missing room",
			mutate: func(snap *Snapshot) {
				snap.ItemLocations["brass lamp"] = 99
			},
		},
		{
			name: "fired item unknown",
			mutate: func(snap *Snapshot) {
				snap.Fired = append(snap.Fired, "crown")
			},
		},
		{
			name: "unlock references missing room",
			mutate: func(snap *Snapshot) {
				snap.Unlocked = append(snap.Unlocked, SavedUnlock{Room: 1, Dir: Down, Dest: 99})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, inst := playedInstance(t)
			snap := inst.Snapshot()
			tc.mutate(&snap)

			_, err := RestoreInstance(testWorld(), inst.ID(), snap)
			assert.Error(err)
		})
	}
}

func Test_Snapshot_unmarshalRejectsBadData(t *testing.T) {
	assert := assert.New(t)

	var snap Snapshot
	assert.Error(snap.UnmarshalBinary(nil))
	assert.Error(snap.UnmarshalBinary([]byte{0x01}))
}

func Test_RestoreInstance_sharedWorldWhilePlaying(t *testing.T) {
	assert := assert.New(t)

	e, inst, _ := startTestGame(t)
	w := inst.World()
	snap := inst.Snapshot()

	// restoring instances against the template a live instance is already
	// playing on must never write to the world
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.ProcessMove(GameMove{InstanceID: inst.ID(), Move: "look"})
		}
	}()

	for i := 0; i < 50; i++ {
		restored, err := RestoreInstance(w, uuid.New(), snap)
		if assert.NoError(err) {
			e.Adopt(restored)
		}
	}
	wg.Wait()
}

func Test_RestoreInstance_restoredID(t *testing.T) {
	assert := assert.New(t)

	_, inst := playedInstance(t)
	snap := inst.Snapshot()

	id := uuid.New()
	restored, err := RestoreInstance(testWorld(), id, snap)
	assert.NoError(err)
	assert.Equal(id, restored.ID())
}
