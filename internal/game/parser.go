package game

import (
	"strings"

	"golang.org/x/text/cases"
)

// File parser.go turns raw player input into CommandState values. Parsing is
// pure: it never touches instance state and the same input always gives the
// same result for the same vocabulary.

// ConsolePrefix is the reserved prefix that marks input as a console
// meta-command rather than a gameplay command.
const ConsolePrefix = "/"

var nameFolder = cases.Fold()

// foldName case-folds a name or verb for comparison.
func foldName(s string) string {
	return nameFolder.String(s)
}

// builtinVerbs maps input verbs to their canonical forms. Movement words all
// normalize to the one-letter direction commands. They are all upper case.
var builtinVerbs = map[string]string{
	"N": "N", "NORTH": "N",
	"S": "S", "SOUTH": "S",
	"E": "E", "EAST": "E",
	"W": "W", "WEST": "W",
	"U": "U", "UP": "U",
	"D": "D", "DOWN": "D",

	"TAKE": "TAKE", "GET": "TAKE", "GRAB": "TAKE", "PICK": "TAKE",
	"DROP": "DROP", "PUT": "DROP",
	"USE": "USE", "COMBINE": "USE",
	"LOOK": "LOOK", "DESCRIBE": "LOOK", "DESC": "LOOK", "EXAMINE": "LOOK",

	"INVENTORY": "INVENTORY", "INVEN": "INVENTORY", "I": "INVENTORY",
	"SCORE": "SCORE",
	"QUIT":  "QUIT", "BYE": "QUIT",
}

// CommandState is the ephemeral result of parsing one line of input. It is
// constructed fresh per line and discarded once the turn engine has consumed
// it; it is never persisted.
type CommandState struct {
	// Valid is whether the input parsed against the vocabulary.
	Valid bool

	// RawCommand is the verbatim input line.
	RawCommand string

	// Command is the normalized verb, e.g. "N" or "TAKE". Only meaningful
	// when Valid is true.
	Command string

	// Modifier is the normalized object/target text, e.g. the item name being
	// taken. Empty for verbs that take no object.
	Modifier string

	// Message is a human-readable diagnostic, filled when Valid is false.
	Message string
}

// Parser matches input verbs against a vocabulary: the built-in verbs plus
// any extra action verbs of the world it was built for.
type Parser struct {
	verbs map[string]string
}

// NewParser creates a Parser whose vocabulary is the built-in verbs plus the
// given extra action verbs. Extra verbs normalize to their own upper-case
// form and never shadow a built-in.
func NewParser(extraVerbs ...string) *Parser {
	p := &Parser{
		verbs: make(map[string]string, len(builtinVerbs)+len(extraVerbs)),
	}

	for alias, canonical := range builtinVerbs {
		p.verbs[alias] = canonical
	}

	for _, v := range extraVerbs {
		upper := strings.ToUpper(strings.TrimSpace(v))
		if upper == "" {
			continue
		}
		if _, taken := p.verbs[upper]; !taken {
			p.verbs[upper] = upper
		}
	}

	return p
}

// Parse tokenizes raw input into a verb and a modifier and matches the verb
// against the vocabulary. Unknown verbs give a CommandState with Valid false
// and a diagnostic in Message; the engine reports that to the player rather
// than treating it as an error.
func (p *Parser) Parse(raw string) CommandState {
	cs := CommandState{RawCommand: raw}

	tokens := strings.Fields(raw)
	if len(tokens) < 1 {
		cs.Message = "Say again? You'll have to actually type something."
		return cs
	}

	// console meta-commands are valid as far as the parser is concerned; the
	// turn engine routes them before resolution
	if strings.HasPrefix(tokens[0], ConsolePrefix) {
		cs.Valid = true
		cs.Command = strings.ToUpper(tokens[0])
		cs.Modifier = strings.Join(tokens[1:], " ")
		return cs
	}

	verb := strings.ToUpper(tokens[0])
	rest := tokens[1:]

	// GO/MOVE are pure connective tissue; the real verb is the direction that
	// follows them
	if verb == "GO" || verb == "MOVE" {
		if len(rest) < 1 {
			cs.Message = "I don't know where you want to go."
			return cs
		}
		verb = strings.ToUpper(rest[0])
		rest = rest[1:]
		if _, isDir := ParseDirection(verb); !isDir {
			cs.Message = "You can only go in one of the six directions: N, S, E, W, U, or D."
			return cs
		}
	}

	canonical, known := p.verbs[verb]
	if !known {
		cs.Message = "I don't know what you mean by \"" + tokens[0] + "\". Try /help."
		return cs
	}

	// swallow the prepositions that naturally ride along with some verbs, so
	// "pick up lamp" and "look at key" behave as expected
	if len(rest) > 0 {
		lead := strings.ToUpper(rest[0])
		switch {
		case canonical == "TAKE" && lead == "UP":
			rest = rest[1:]
		case canonical == "DROP" && lead == "DOWN":
			rest = rest[1:]
		case canonical == "LOOK" && lead == "AT":
			rest = rest[1:]
		case canonical == "USE" && (lead == "THE" || lead == "MY"):
			rest = rest[1:]
		}
	}

	cs.Valid = true
	cs.Command = canonical
	cs.Modifier = strings.Join(rest, " ")

	return cs
}
