package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/rosed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// File console.go implements the console command subsystem: slash-prefixed
// meta-commands that are intercepted before they ever reach the action
// resolver. Apart from the display toggles, console commands never touch
// game-world state.

const consoleOutputWidth = 80

var consoleHelp = [][2]string{
	{"/help", "show this help"},
	{"/map", "show a map of the rooms you have visited"},
	{"/history", "show your recent commands"},
	{"/clear", "clear the display"},
	{"/classic", "toggle classic display mode"},
	{"/scroll", "toggle scrolling display mode"},
	{"/games", "list the games available to play"},
	{"/fortune [ID|day]", "show a fortune: random, by ID, or the fortune of the day"},
	{"/version", "show the engine version"},
}

var titleCaser = cases.Title(language.English)

// handleConsole dispatches one console meta-command and builds its result.
// Unknown commands degrade to the help text rather than failing. Called with
// the instance's lock held.
func (e *Engine) handleConsole(inst *Instance, move GameMove) GameMoveResult {
	result := inst.assembleResult("")

	fields := strings.Fields(move.Move)
	name := ""
	if len(fields) > 0 {
		name = strings.ToLower(strings.TrimPrefix(fields[0], ConsolePrefix))
	}
	args := fields[1:]

	switch name {
	case "map":
		payload := inst.mapPayload()
		result.Map = &payload
		result.ConsoleOutput = renderMap(payload)
	case "history":
		result.History = inst.History()
		result.ConsoleOutput = renderHistory(result.History)
	case "clear":
		result.ClearDisplay = true
	case "classic":
		inst.classicMode = !inst.classicMode
		v := inst.classicMode
		result.ClassicMode = &v
		result.ConsoleOutput = modeMessage("Classic display mode", v)
	case "scroll":
		inst.scrollMode = !inst.scrollMode
		v := inst.scrollMode
		result.ScrollMode = &v
		result.ConsoleOutput = modeMessage("Scrolling display mode", v)
	case "games":
		if e.games != nil {
			result.AvailableGames = e.games.ListGames()
		}
		result.ConsoleOutput = renderGameList(result.AvailableGames)
	case "fortune":
		result.ConsoleOutput = e.consoleFortune(args)
	case "version":
		result.ConsoleOutput = "Grotto engine version " + e.version()
	default:
		// covers /help and anything unrecognized
		result.ConsoleOutput = renderConsoleHelp()
	}

	return result
}

// consoleFortune fetches a fortune from the engine's provider. With no
// argument the fortune is random; "day" gives the fortune of the day; a
// number gives the fortune with that ID.
func (e *Engine) consoleFortune(args []string) string {
	if len(args) < 1 {
		f := e.fortunes.Random()
		return fmt.Sprintf("Fortune #%d: %s", f.ID, f.Text)
	}

	arg := strings.ToLower(args[0])
	if arg == "day" || arg == "today" {
		f := e.fortunes.TimeBased()
		return fmt.Sprintf("Fortune of the day (#%d): %s", f.ID, f.Text)
	}

	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Sprintf("%q is not a fortune ID. Try /fortune, /fortune day, or /fortune 3.", args[0])
	}

	f, ok := e.fortunes.ByID(id)
	if !ok {
		return fmt.Sprintf("There is no fortune with ID %d.", id)
	}
	return fmt.Sprintf("Fortune #%d: %s", f.ID, f.Text)
}

// mapPayload assembles the explicit room/exit summary for the rooms this
// instance has visited, with the instance's unlock overrides applied. Called
// with the instance's lock held.
func (inst *Instance) mapPayload() MapPayload {
	nums := make([]int, 0, len(inst.visited))
	for num := range inst.visited {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	payload := MapPayload{Rooms: make([]MapRoom, 0, len(nums))}
	for _, num := range nums {
		room := inst.world.Room(num)

		mr := MapRoom{
			Number:  num,
			Name:    room.Name,
			Current: num == inst.currentRoom,
			Exits:   make(map[string]int),
		}
		for _, d := range Directions {
			if dest, ok := inst.exitFrom(room, d).Dest(); ok {
				mr.Exits[d.String()] = dest
			}
		}

		payload.Rooms = append(payload.Rooms, mr)
	}

	return payload
}

// renderMap lays the payload out as text for clients that do not draw their
// own maps.
func renderMap(payload MapPayload) string {
	if len(payload.Rooms) < 1 {
		return "You haven't been anywhere yet."
	}

	entries := make([][2]string, len(payload.Rooms))
	for i, mr := range payload.Rooms {
		marker := "  "
		if mr.Current {
			marker = "* "
		}

		var exits []string
		for _, d := range Directions {
			if dest, ok := mr.Exits[d.String()]; ok {
				exits = append(exits, fmt.Sprintf("%s->%d", d.Short(), dest))
			}
		}
		exitDesc := "no exits"
		if len(exits) > 0 {
			exitDesc = strings.Join(exits, ", ")
		}

		entries[i] = [2]string{
			fmt.Sprintf("%s%d. %s", marker, mr.Number, titleCaser.String(mr.Name)),
			exitDesc,
		}
	}

	return rosed.Edit("Rooms you have visited (* marks where you are):\n").
		WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
		InsertDefinitionsTable(rosed.End, entries, consoleOutputWidth).
		String()
}

// renderHistory lays out the recent command list, oldest first.
func renderHistory(history []string) string {
	if len(history) < 1 {
		return "You haven't entered any commands yet."
	}

	sb := strings.Builder{}
	sb.WriteString("Your recent commands, oldest first:\n")
	for i, cmd := range history {
		sb.WriteString(fmt.Sprintf("%4d. %s\n", i+1, cmd))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderGameList lays out the list of playable games.
func renderGameList(games []GameInfo) string {
	if len(games) < 1 {
		return "No games are available right now."
	}

	entries := make([][2]string, len(games))
	for i, g := range games {
		desc := g.Description
		if desc == "" {
			desc = "(no description)"
		}
		entries[i] = [2]string{titleCaser.String(g.Name), desc}
	}

	return rosed.Edit("Available games:\n").
		WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
		InsertDefinitionsTable(rosed.End, entries, consoleOutputWidth).
		String()
}

// renderConsoleHelp lays out the console command table. It doubles as the
// fallback for unknown console commands.
func renderConsoleHelp() string {
	return rosed.Edit("Console commands:\n").
		WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
		InsertDefinitionsTable(rosed.End, consoleHelp, consoleOutputWidth).
		String()
}

func modeMessage(what string, on bool) string {
	if on {
		return what + " is now ON."
	}
	return what + " is now OFF."
}
