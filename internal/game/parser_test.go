package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse_commandNormalization(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectValid    bool
		expectCommand  string
		expectModifier string
	}{
		{
			name:          "bare direction letter",
			input:         "n",
			expectValid:   true,
			expectCommand: "N",
		},
		{
			name:          "full direction word",
			input:         "NORTH",
			expectValid:   true,
			expectCommand: "N",
		},
		{
			name:          "go plus direction",
			input:         "go east",
			expectValid:   true,
			expectCommand: "E",
		},
		{
			name:          "move plus direction",
			input:         "move up",
			expectValid:   true,
			expectCommand: "U",
		},
		{
			name:        "go without direction",
			input:       "go",
			expectValid: false,
		},
		{
			name:        "go with non-direction",
			input:       "go lamp",
			expectValid: false,
		},
		{
			name:           "take alias get",
			input:          "get brass lamp",
			expectValid:    true,
			expectCommand:  "TAKE",
			expectModifier: "brass lamp",
		},
		{
			name:           "pick up strips preposition",
			input:          "pick up lamp",
			expectValid:    true,
			expectCommand:  "TAKE",
			expectModifier: "lamp",
		},
		{
			name:           "look at strips preposition",
			input:          "look at key",
			expectValid:    true,
			expectCommand:  "LOOK",
			expectModifier: "key",
		},
		{
			name:          "inventory single letter",
			input:         "i",
			expectValid:   true,
			expectCommand: "INVENTORY",
		},
		{
			name:          "bye normalizes to quit",
			input:         "bye",
			expectValid:   true,
			expectCommand: "QUIT",
		},
		{
			name:        "empty input",
			input:       "",
			expectValid: false,
		},
		{
			name:        "whitespace only",
			input:       "   \t  ",
			expectValid: false,
		},
		{
			name:        "unknown verb",
			input:       "frobnicate lamp",
			expectValid: false,
		},
		{
			name:           "console command passes through",
			input:          "/map full",
			expectValid:    true,
			expectCommand:  "/MAP",
			expectModifier: "full",
		},
	}

	p := NewParser()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			cs := p.Parse(tc.input)

			assert.Equal(tc.expectValid, cs.Valid)
			assert.Equal(tc.input, cs.RawCommand)
			if tc.expectValid {
				assert.Equal(tc.expectCommand, cs.Command)
				assert.Equal(tc.expectModifier, cs.Modifier)
				assert.Empty(cs.Message)
			} else {
				assert.NotEmpty(cs.Message)
			}
		})
	}
}

func Test_Parse_unknownVerbDiagnostic(t *testing.T) {
	assert := assert.New(t)

	p := NewParser()
	cs := p.Parse("frobnicate the lamp")

	assert.False(cs.Valid)
	assert.Equal("I don't know what you mean by \"frobnicate\". Try /help.", cs.Message)
}

func Test_Parse_extraVerbs(t *testing.T) {
	assert := assert.New(t)

	p := NewParser("read", "RUB")

	cs := p.Parse("READ scroll")
	assert.True(cs.Valid)
	assert.Equal("READ", cs.Command)
	assert.Equal("scroll", cs.Modifier)

	cs = p.Parse("rub lamp")
	assert.True(cs.Valid)
	assert.Equal("RUB", cs.Command)
}

func Test_Parse_extraVerbsCannotShadowBuiltins(t *testing.T) {
	assert := assert.New(t)

	// a world action verb spelled like a movement word must not take over
	// the movement meaning
	p := NewParser("NORTH")

	cs := p.Parse("north")
	assert.True(cs.Valid)
	assert.Equal("N", cs.Command)
}

func Test_Parse_deterministic(t *testing.T) {
	assert := assert.New(t)

	p := NewParser("READ")

	first := p.Parse("take up the brass lamp")
	for i := 0; i < 10; i++ {
		assert.Equal(first, p.Parse("take up the brass lamp"))
	}
}
