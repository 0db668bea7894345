package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// startTestGame validates the fixture world, starts an instance of it on a
// fresh engine, and returns both plus a move function bound to the instance.
func startTestGame(t *testing.T, opts ...EngineOption) (*Engine, *Instance, func(string) GameMoveResult) {
	t.Helper()

	e := NewEngine(opts...)
	w := testWorld()

	inst, err := e.StartInstance(w, "Rose")
	if err != nil {
		t.Fatalf("could not start instance: %v", err)
	}

	move := func(input string) GameMoveResult {
		t.Helper()
		result, err := e.ProcessMove(GameMove{InstanceID: inst.ID(), Move: input})
		if err != nil {
			t.Fatalf("ProcessMove(%q): %v", input, err)
		}
		return result
	}

	return e, inst, move
}

func Test_StartInstance_refusesInvalidWorld(t *testing.T) {
	assert := assert.New(t)

	e := NewEngine()
	w := testWorld()
	w.Start = 99

	_, err := e.StartInstance(w, "Rose")
	assert.Error(err)
}

func Test_ProcessMove_unknownInstance(t *testing.T) {
	assert := assert.New(t)

	e := NewEngine()

	_, err := e.ProcessMove(GameMove{InstanceID: uuid.New(), Move: "n"})
	assert.Error(err)
}

func Test_ProcessMove_unknownVerbChangesNothing(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	result := move("frobnicate lamp")

	assert.Contains(result.RoomMessage, "frobnicate")
	assert.Equal(1, inst.CurrentRoom().Number)
	assert.Zero(inst.Score())
	assert.Zero(inst.Turns())
	assert.Empty(inst.History(), "a rejected command must not enter history")
}

func Test_ProcessMove_movement(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	result := move("go north")
	assert.Equal("Great Hall", result.RoomName)
	assert.Equal("You head north.", result.RoomMessage)
	assert.Equal(2, inst.CurrentRoom().Number)
	assert.Equal(1, inst.Turns())

	// no west exit in the great hall
	before := inst.Turns()
	result = move("w")
	assert.Equal("You can't go west from here.", result.RoomMessage)
	assert.Equal(2, inst.CurrentRoom().Number, "a failed move must not relocate the player")
	assert.Equal(before, inst.Turns(), "a failed move must not count as a turn")
}

func Test_ProcessMove_roomPointsAwardedOncePerInstance(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)
	assert.Zero(inst.Score(), "start room is worth nothing in the fixture")

	move("n")
	assert.Equal(10, inst.Score(), "first visit to the great hall pays its points")

	move("s")
	move("n")
	assert.Equal(10, inst.Score(), "revisiting pays nothing")
	assert.True(inst.Visited(2))
}

func Test_ProcessMove_takeAndDropRoundTrip(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	result := move("take lamp")
	assert.Equal("You pick up the Brass Lamp and add it to your inventory.", result.RoomMessage)

	loc, ok := inst.ItemLocation("Brass Lamp")
	assert.True(ok)
	assert.True(loc.IsInventory())

	// carry it north and drop it there
	move("n")
	result = move("drop lamp")
	assert.Equal("You drop the Brass Lamp onto the ground.", result.RoomMessage)

	loc, _ = inst.ItemLocation("Brass Lamp")
	num, ok := loc.Room()
	assert.True(ok)
	assert.Equal(2, num)
	assert.Contains(result.ItemsMessage, "Brass Lamp")

	// taking and dropping never touch the score
	assert.Equal(10, inst.Score())
}

func Test_ProcessMove_takeMissingItem(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	result := move("take sword")
	assert.Equal("I don't see any \"sword\" here.", result.RoomMessage)
	assert.Zero(inst.Turns())

	result = move("drop lamp")
	assert.Equal("You don't have a \"lamp\".", result.RoomMessage)
}

func Test_ProcessMove_unlockActionRewritesExitAndScoresOnce(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	// east is walled off until the key is used
	result := move("e")
	assert.Equal("You can't go east from here.", result.RoomMessage)

	result = move("use key")
	assert.Equal("The key turns with a screech and a gate swings open to the east.", result.RoomMessage)
	assert.Equal(5, inst.Score())
	assert.True(inst.ActionFired("Rusty Key"))

	// repeat use: still a valid move, but no further score
	result = move("use key")
	assert.Equal("You already did that with the Rusty Key.", result.RoomMessage)
	assert.Equal(5, inst.Score())

	// the rewritten exit works now, and the vault pays its points
	result = move("e")
	assert.Equal("Vault", result.RoomName)
	assert.Equal(5+25, inst.Score())
}

func Test_ProcessMove_repeatNarrationPolicy(t *testing.T) {
	assert := assert.New(t)

	e := NewEngine()
	w := testWorld()
	w.RepeatNarration = true

	inst, err := e.StartInstance(w, "Rose")
	assert.NoError(err)

	mv := func(input string) GameMoveResult {
		result, err := e.ProcessMove(GameMove{InstanceID: inst.ID(), Move: input})
		assert.NoError(err)
		return result
	}

	mv("use key")
	result := mv("use key")

	assert.Equal("The key turns with a screech and a gate swings open to the east.", result.RoomMessage)
	assert.Equal(5, inst.Score(), "narration repeats, score does not")
}

func Test_ProcessMove_spawnAndConsume(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	move("n")
	result := move("read scroll")
	assert.Equal("The words shimmer and a gem clatters to the cave floor behind you.", result.RoomMessage)
	assert.Equal(10+7, inst.Score())

	loc, _ := inst.ItemLocation("Scroll")
	assert.True(loc.IsConsumed(), "the scroll is used up")

	loc, _ = inst.ItemLocation("Gem")
	num, ok := loc.Room()
	assert.True(ok)
	assert.Equal(1, num, "the gem spawned into the entrance")

	// with the scroll gone, reading it again finds nothing
	result = move("read scroll")
	assert.Equal("I don't see any \"scroll\" here.", result.RoomMessage)
}

func Test_ProcessMove_alternateActionVerb(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	move("n")
	result := move("peruse scroll")

	assert.Equal("The words shimmer and a gem clatters to the cave floor behind you.", result.RoomMessage)
	assert.Equal(10+7, inst.Score())
}

func Test_ProcessMove_wrongVerbForItem(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	result := move("use lamp")
	assert.Equal("You can't use the Brass Lamp.", result.RoomMessage)
	assert.Zero(inst.Score())
	assert.False(inst.ActionFired("Brass Lamp"))
}

func Test_ProcessMove_lookAndInventoryAndScore(t *testing.T) {
	assert := assert.New(t)

	_, _, move := startTestGame(t)

	result := move("look")
	assert.Contains(result.RoomMessage, "A dank opening in the rock.")
	assert.Contains(result.RoomMessage, "Brass Lamp")
	assert.Contains(result.RoomMessage, "Rusty Key")

	result = move("look at key")
	assert.Equal("Pitted with age, but solid.", result.RoomMessage)

	result = move("inventory")
	assert.Equal("You aren't carrying anything.", result.RoomMessage)

	move("take lamp")
	result = move("i")
	assert.Contains(result.RoomMessage, "Brass Lamp")

	result = move("score")
	assert.Contains(result.RoomMessage, "scored 0 points")
}

func Test_ProcessMove_ambiguousPartialMatch(t *testing.T) {
	assert := assert.New(t)

	e := NewEngine()
	w := testWorld()
	w.Items = append(w.Items, &Item{
		Name:        "Brass Knob",
		Description: "Polished smooth by many hands.",
		Start:       InRoom(1),
	})

	inst, err := e.StartInstance(w, "Rose")
	assert.NoError(err)

	result, err := e.ProcessMove(GameMove{InstanceID: inst.ID(), Move: "take brass"})
	assert.NoError(err)

	// "brass" is a partial match for two items; the engine does not guess
	assert.Equal("I don't see any \"brass\" here.", result.RoomMessage)
}

func Test_ProcessMove_resultEnvelope(t *testing.T) {
	assert := assert.New(t)

	_, _, move := startTestGame(t)

	result := move("n")

	assert.Equal("Great Hall", result.RoomName)
	assert.Equal("A vaulted chamber.", result.RoomDescription)
	assert.Contains(result.ItemsMessage, "Scroll")
	assert.Contains(result.HealthReport, "Rose")
	assert.Contains(result.HealthReport, "Score: 10")
	assert.Contains(result.HealthReport, "Moves: 1")
	assert.Equal("Rose", result.PlayerName)
	assert.Nil(result.ClassicMode)
	assert.Nil(result.ScrollMode)
	assert.Empty(result.ConsoleOutput)
}

func Test_ProcessMove_modePreferences(t *testing.T) {
	assert := assert.New(t)

	e, inst, _ := startTestGame(t)

	result, err := e.ProcessMove(GameMove{InstanceID: inst.ID(), Move: "look", UseClassicMode: true})
	assert.NoError(err)
	if assert.NotNil(result.ClassicMode) {
		assert.True(*result.ClassicMode)
	}
	assert.Nil(result.ScrollMode)
	assert.True(inst.ClassicMode())

	// same preference again is not a change
	result, err = e.ProcessMove(GameMove{InstanceID: inst.ID(), Move: "look", UseClassicMode: true})
	assert.NoError(err)
	assert.Nil(result.ClassicMode)
}

func Test_ProcessMove_quitIsRefusedByResolver(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	result := move("quit")
	assert.Contains(result.RoomMessage, "QUIT")
	assert.Zero(inst.Turns())
}

func Test_ProcessMove_historyRecordsGameplayOnly(t *testing.T) {
	assert := assert.New(t)

	_, inst, move := startTestGame(t)

	move("n")
	move("frobnicate")
	move("/map")
	move("s")

	assert.Equal([]string{"n", "s"}, inst.History())
}

func Test_ProcessMove_instancesAreIndependent(t *testing.T) {
	assert := assert.New(t)

	e := NewEngine()
	w := testWorld()

	a, err := e.StartInstance(w, "Rose")
	assert.NoError(err)
	b, err := e.StartInstance(w, "Dave")
	assert.NoError(err)

	_, err = e.ProcessMove(GameMove{InstanceID: a.ID(), Move: "use key"})
	assert.NoError(err)
	_, err = e.ProcessMove(GameMove{InstanceID: a.ID(), Move: "e"})
	assert.NoError(err)

	assert.Equal(3, a.CurrentRoom().Number)
	assert.Equal(1, b.CurrentRoom().Number, "another player's unlock must not leak")

	result, err := e.ProcessMove(GameMove{InstanceID: b.ID(), Move: "e"})
	assert.NoError(err)
	assert.Equal("You can't go east from here.", result.RoomMessage)

	// and the shared template itself is untouched
	assert.False(w.Room(1).Exit(East).Exists())
}
