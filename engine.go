// Package grotto contains a CLI-driven client for getting commands and
// advancing a local game instance continuously until the user quits.
package grotto

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dgould/grotto/internal/game"
	"github.com/dgould/grotto/internal/gdf"
	"github.com/dgould/grotto/internal/input"
	"github.com/dgould/grotto/internal/util"
)

const consoleOutputWidth = 80

// Engine contains the things needed to run a game from an interactive shell
// attached to an input stream and an output stream. It hosts a single local
// instance on the same turn engine the server uses.
type Engine struct {
	turns       *game.Engine
	inst        *game.Instance
	in          input.Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool

	lastRoom string
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately load the world file, start an instance on it,
// and open a buffered writer on the output stream.
//
// If nil is given for the input stream, input is read from stdin. If nil is
// given for the output stream, a buffered writer is opened on stdout.
func New(inputStream io.Reader, outputStream io.Writer, worldFilePath, playerName string, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	world, err := gdf.LoadResourceBundle(worldFilePath)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		turns:       game.NewEngine(),
		out:         bufio.NewWriter(outputStream),
		forceDirect: forceDirectInput,
	}

	eng.inst, err = eng.turns.StartInstance(world, playerName)
	if err != nil {
		return nil, fmt.Errorf("starting game instance: %w", err)
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		eng.in, err = input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running game engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and applying them to
// the game until the QUIT command is received or input runs out.
func (eng *Engine) RunUntilQuit() error {
	world := eng.inst.World()

	introMsg := "Welcome to " + world.Name + "\n"
	if world.Description != "" {
		introMsg += world.Description + "\n"
	}
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += strings.Repeat("=", len("Welcome to "+world.Name)) + "\n\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}
	if err := eng.showRoom(); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	for eng.running {
		cmd, err := eng.in.ReadCommand()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		// special check: the turn engine will not honor the QUIT command,
		// only a runner can do that. so check if that's what we got
		cs := world.Parser().Parse(cmd)
		if cs.Valid && cs.Command == "QUIT" {
			eng.running = false
			break
		}

		result, err := eng.turns.ProcessMove(game.GameMove{
			InstanceID:     eng.inst.ID(),
			Move:           cmd,
			UseClassicMode: eng.inst.ClassicMode(),
			UseScrollMode:  eng.inst.ScrollMode(),
		})
		if err != nil {
			return fmt.Errorf("process move: %w", err)
		}

		if err := eng.render(result); err != nil {
			return err
		}
	}

	return eng.write("Goodbye\n")
}

// render writes one move result to the output stream.
func (eng *Engine) render(result game.GameMoveResult) error {
	if result.ClearDisplay {
		if err := eng.write("\033[2J\033[H"); err != nil {
			return err
		}
	}

	if result.ConsoleOutput != "" {
		// console output is pre-formatted; wrapping would mangle its tables
		return eng.write(result.ConsoleOutput + "\n")
	}

	if result.RoomMessage != "" {
		msg := rosed.Edit(result.RoomMessage).Wrap(consoleOutputWidth).String()
		if err := eng.write(msg + "\n"); err != nil {
			return err
		}
	}

	// re-describe the surroundings when the player arrives somewhere new, or
	// on every move in classic display mode
	if result.RoomName != eng.lastRoom || eng.inst.ClassicMode() {
		if err := eng.showRoom(); err != nil {
			return err
		}
	}

	return nil
}

// showRoom writes the current room's name, description, and contents.
func (eng *Engine) showRoom() error {
	room := eng.inst.CurrentRoom()
	eng.lastRoom = room.Name

	view := "\n" + room.Name + "\n"
	view += rosed.Edit(room.Desc).Wrap(consoleOutputWidth).String() + "\n"

	items := []string{}
	for _, it := range eng.inst.World().Items {
		if loc, ok := eng.inst.ItemLocation(it.Name); ok {
			if num, inRoom := loc.Room(); inRoom && num == room.Number {
				items = append(items, it.Name)
			}
		}
	}
	if len(items) > 0 {
		view += rosed.Edit("On the ground, you can see "+util.MakeTextList(items, true)+".").Wrap(consoleOutputWidth).String() + "\n"
	}

	return eng.write(view)
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
