package game

import (
	"fmt"
	"strings"

	"github.com/dgould/grotto/internal/gerrors"
	"github.com/dgould/grotto/internal/util"
)

// File resolve.go applies a validated command against an instance's state.
// Every branch validates completely before its first mutation, so a failed
// command always leaves the instance exactly as it was.

// resolve executes the given parsed command against the instance and returns
// the narrative fragment to show the player. Player-level failures (no exit
// that way, no such item here) come back as interpreter errors with no state
// change; the turn engine turns those into result text.
//
// resolve must only be called with a CommandState whose Valid is true, and
// with the instance's lock held.
func (inst *Instance) resolve(cmd CommandState) (string, error) {
	if dir, ok := ParseDirection(cmd.Command); ok && len(cmd.Command) == 1 {
		return inst.resolveMove(dir)
	}

	switch cmd.Command {
	case "TAKE":
		return inst.resolveTake(cmd.Modifier)
	case "DROP":
		return inst.resolveDrop(cmd.Modifier)
	case "LOOK":
		return inst.resolveLook(cmd.Modifier)
	case "INVENTORY":
		return inst.resolveInventory()
	case "SCORE":
		return fmt.Sprintf("You have scored %d points in %d moves.", inst.score, inst.turns), nil
	case "QUIT":
		return "", gerrors.Interpreterf("I can't QUIT; that's up to whatever is running this game.")
	default:
		// anything else in the vocabulary is an action verb, USE included
		return inst.resolveItemAction(cmd.Command, cmd.Modifier)
	}
}

// resolveMove travels in the given direction if the current room has an
// effective exit that way.
func (inst *Instance) resolveMove(dir Direction) (string, error) {
	room := inst.CurrentRoom()

	dest, ok := inst.exitFrom(room, dir).Dest()
	if !ok {
		return "", gerrors.Interpreterf("You can't go %s from here.", dir)
	}

	inst.moveTo(dest)

	return fmt.Sprintf("You head %s.", dir), nil
}

// resolveTake picks up an item from the current room.
func (inst *Instance) resolveTake(modifier string) (string, error) {
	if strings.TrimSpace(modifier) == "" {
		return "", gerrors.Interpreterf("I don't know what you want to take.")
	}

	item, err := inst.findItem(modifier, scanRoomOnly)
	if err != nil {
		return "", err
	}

	inst.itemLocs[foldName(item.Name)] = InInventory()

	return fmt.Sprintf("You pick up the %s and add it to your inventory.", item.Name), nil
}

// resolveDrop puts a carried item down in the current room.
func (inst *Instance) resolveDrop(modifier string) (string, error) {
	if strings.TrimSpace(modifier) == "" {
		return "", gerrors.Interpreterf("I don't know what you want to drop.")
	}

	item, err := inst.findItem(modifier, scanInventoryOnly)
	if err != nil {
		return "", err
	}

	inst.itemLocs[foldName(item.Name)] = InRoom(inst.currentRoom)

	return fmt.Sprintf("You drop the %s onto the ground.", item.Name), nil
}

// resolveLook describes the current room, or a single visible item if a
// modifier is given. It never mutates state.
func (inst *Instance) resolveLook(modifier string) (string, error) {
	if strings.TrimSpace(modifier) == "" {
		desc := inst.CurrentRoom().Desc
		if itemsMsg := inst.itemsMessage(); itemsMsg != "" {
			desc += "\n\n" + itemsMsg
		}
		return desc, nil
	}

	item, err := inst.findItem(modifier, scanRoomThenInventory)
	if err != nil {
		return "", err
	}

	return item.Description, nil
}

// resolveInventory lists what the player is carrying.
func (inst *Instance) resolveInventory() (string, error) {
	carried := inst.itemsInInventory()
	if len(carried) < 1 {
		return "You aren't carrying anything.", nil
	}

	names := make([]string, len(carried))
	for i := range carried {
		names[i] = carried[i].Name
	}

	return "You currently have the following items:\n" + util.MakeTextList(names, true) + ".", nil
}

// resolveItemAction fires the special action of an item with the given verb.
// Scoring and effects happen exactly once per (instance, item); repeating the
// action is still a valid command but awards nothing further.
func (inst *Instance) resolveItemAction(verb, modifier string) (string, error) {
	if strings.TrimSpace(modifier) == "" {
		return "", gerrors.Interpreterf("I don't know what you want to %s.", strings.ToLower(verb))
	}

	item, err := inst.findItem(modifier, scanRoomThenInventory)
	if err != nil {
		return "", err
	}

	if !item.TriggeredBy(verb) {
		return "", gerrors.Interpreterf("You can't %s the %s.", strings.ToLower(verb), item.Name)
	}

	key := foldName(item.Name)

	if inst.fired[key] {
		// repeat firing is a no-op beyond narration
		if inst.world.RepeatNarration {
			return item.ActionResult, nil
		}
		return fmt.Sprintf("You already did that with the %s.", item.Name), nil
	}

	switch item.Effect.Kind() {
	case EffectUnlock:
		room, dir, dest := item.Effect.Unlock()
		inst.unlocked = append(inst.unlocked, exitOverride{room: room, dir: dir, dest: dest})
	case EffectSpawn:
		spawned, room := item.Effect.Spawn()
		inst.itemLocs[foldName(spawned)] = InRoom(room)
	}

	inst.fired[key] = true
	inst.score += item.ActionPoints

	if item.ConsumedOnUse {
		inst.itemLocs[key] = Consumed()
	}

	return item.ActionResult, nil
}

// itemScan says which locations findItem searches.
type itemScan int

const (
	scanRoomThenInventory itemScan = iota
	scanRoomOnly
	scanInventoryOnly
)

// findItem resolves a modifier against items visible to the player. An exact
// case-insensitive full-name match always wins; failing that, the first item
// whose name contains the modifier is used, scanning the room (in definition
// order) before the inventory. A modifier that partially matches more than
// one item without matching any exactly is not guessed at; it reports the
// same way as no match at all.
func (inst *Instance) findItem(modifier string, scan itemScan) (*Item, error) {
	want := foldName(strings.TrimSpace(modifier))

	var candidates []*Item
	switch scan {
	case scanRoomOnly:
		candidates = inst.itemsInRoom(inst.currentRoom)
	case scanInventoryOnly:
		candidates = inst.itemsInInventory()
	default:
		candidates = append(inst.itemsInRoom(inst.currentRoom), inst.itemsInInventory()...)
	}

	var partials []*Item
	for _, it := range candidates {
		name := foldName(it.Name)
		if name == want {
			return it, nil
		}
		if strings.Contains(name, want) {
			partials = append(partials, it)
		}
	}

	if len(partials) == 1 {
		return partials[0], nil
	}

	if scan == scanInventoryOnly {
		return nil, gerrors.Interpreterf("You don't have a %q.", strings.TrimSpace(modifier))
	}
	return nil, gerrors.Interpreterf("I don't see any %q here.", strings.TrimSpace(modifier))
}

// itemsMessage builds the items-present summary for the current room, or ""
// if the room is empty.
func (inst *Instance) itemsMessage() string {
	items := inst.itemsInRoom(inst.currentRoom)
	if len(items) < 1 {
		return ""
	}

	names := make([]string, len(items))
	for i := range items {
		names[i] = items[i].Name
	}

	return "On the ground, you can see " + util.MakeTextList(names, true) + "."
}
