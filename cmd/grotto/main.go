/*
Grotto starts an interactive Grotto engine session.

It reads in a world file and starts the game in the designated starting
position. The interpreter will then start printing what is happening in the
game to stdout and will read user input from stdin until the game is over or
the "QUIT" command is input.

Usage:

	grotto [flags]

The flags are:

	-v, --version
		Give the current version of Grotto and then exit.

	-w, --world FILE
		Use the provided GDF resource file for the world. If not given, will
		default to the value of environment variable GROTTO_WORLD, and if that
		is not given, will default to the file "world.gdf" in the current
		working directory.

	-p, --player NAME
		Play as the given player name instead of the world's default.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

Once a session has started, the user input will be parsed for Grotto commands.
For an explanation of the console commands, type "/help" once in a session. To
exit the interpreter, type "QUIT".
*/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/dgould/grotto"
	"github.com/dgould/grotto/internal/version"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitGameError indicates an unsuccessful program execution due to a
	// problem during the game.
	ExitGameError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the engine.
	ExitInitError
)

const (
	EnvWorld = "GROTTO_WORLD"
)

var (
	returnCode = ExitSuccess

	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	flagWorld   = pflag.StringP("world", "w", "", "The GDF world data or manifest file that contains the definition of the world")
	flagPlayer  = pflag.StringP("player", "p", "", "Play as the given player name instead of the world's default")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic("unrecoverable panic occured")
		} else {
			os.Exit(returnCode)
		}
	}()

	godotenv.Load()
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	worldFile := os.Getenv(EnvWorld)
	if pflag.Lookup("world").Changed {
		worldFile = *flagWorld
	}
	if worldFile == "" {
		worldFile = "world.gdf"
	}

	gameEng, initErr := grotto.New(os.Stdin, os.Stdout, worldFile, *flagPlayer, *flagDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer gameEng.Close()

	err := gameEng.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGameError
		return
	}
}
