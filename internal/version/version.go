// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of the Grotto engine.
const Current = "0.2.0"

// ServerCurrent is the string representing the current version of the Grotto
// server.
const ServerCurrent = "0.2.0"

// Version returns the current engine version string. It exists so callers can
// consume the version as a collaborator function rather than reading the
// constant directly.
func Version() string {
	return Current
}
