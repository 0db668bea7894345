// Package gerrors defines error types shared across the Grotto engine. The
// main one is the interpreter error, which carries both a human-readable
// message suitable for showing in-game and a typical more technical "error
// message" style message.
package gerrors

import "fmt"

// interpreterError is an error caused by attempting to interpret player input.
// Either the input could not be understood or it specifies doing something
// that is impossible or not allowed at the current time.
type interpreterError struct {
	msg   string
	human string
	wrap  error
}

func (e *interpreterError) Error() string {
	return e.msg
}

// GameMessage shows the message that should be displayed in-game to describe
// the error.
func (e *interpreterError) GameMessage() string {
	return e.human
}

// Unwrap gives the error that the interpreter error wraps, if it wraps one.
func (e *interpreterError) Unwrap() error {
	return e.wrap
}

// Interpreter returns a new interpreter error that has both the message to
// show the player and the technical description of the error.
func Interpreter(game, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q)", game)
	}
	return &interpreterError{
		msg:   technical,
		human: game,
	}
}

// Interpreterf returns a new interpreter error that has a message to show to
// the player and an automatically generated Error() description. The arguments
// given are the format string and the arguments to the format string.
func Interpreterf(gameFormat string, a ...interface{}) error {
	gameMessage := fmt.Sprintf(gameFormat, a...)
	return Interpreter(gameMessage, "")
}

// WrapInterpreter returns a new interpreter error that has both the message to
// show the player and the technical description of the error, and that wraps
// the given error.
func WrapInterpreter(e error, game, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q)", game)
	}
	return &interpreterError{
		msg:   technical,
		human: game,
		wrap:  e,
	}
}

// IsInterpreter returns whether the given error is an interpreter error, i.e.
// a recoverable player-visible condition as opposed to an engine fault.
func IsInterpreter(err error) bool {
	_, ok := err.(*interpreterError)
	return ok
}

// GameMessage gets the message to display in-game for the given error. If it
// is one of the types defined in gerrors, the special game message is returned
// (if it exists). Otherwise, err.Error() is returned.
func GameMessage(err error) string {
	if intErr, ok := err.(*interpreterError); ok {
		return intErr.GameMessage()
	}
	return err.Error()
}
