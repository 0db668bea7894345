// Package fortune provides short fortune texts that can be shown to players
// between turns. It is read-only and stateless from the engine's point of
// view; the engine only ever makes single synchronous calls into it.
package fortune

import (
	"math/rand"
	"sync"
	"time"
)

// Fortune is one fortune text with a stable ID.
type Fortune struct {
	ID   int
	Text string
}

// defaultCorpus is the built-in set of fortunes. Installations that want a
// bigger corpus can construct a Provider with their own via NewWithCorpus.
var defaultCorpus = []string{
	"A locked door is just a puzzle wearing a disguise.",
	"The room you have not visited yet is the one with the points in it.",
	"Take everything that is not nailed down. Check the nails.",
	"North is a fine direction, but so are the other five.",
	"He who drops the lamp in the dark deserves the dark.",
	"Fortune favors the player who reads the description twice.",
	"Somewhere, an exit you cannot see yet is waiting to be unlocked.",
	"A full inventory is a heavy conscience.",
	"Score is temporary. The map is forever.",
	"When in doubt, type it and see what happens.",
}

// Provider hands out fortunes from a corpus. Construct one with New or
// NewWithCorpus; the zero value has no corpus and must not be used.
type Provider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	corpus []Fortune
}

// New creates a Provider that uses the built-in corpus and a time-seeded
// random source.
func New() *Provider {
	return NewWithCorpus(defaultCorpus)
}

// NewWithCorpus creates a Provider over the given texts. Each text is assigned
// an ID equal to its index. An empty corpus is replaced with the built-in one.
func NewWithCorpus(texts []string) *Provider {
	if len(texts) < 1 {
		texts = defaultCorpus
	}

	p := &Provider{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		corpus: make([]Fortune, len(texts)),
	}
	for i := range texts {
		p.corpus[i] = Fortune{ID: i, Text: texts[i]}
	}

	return p
}

// Random returns a uniformly-selected fortune from the corpus.
func (p *Provider) Random() Fortune {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.corpus[p.rng.Intn(len(p.corpus))]
}

// TimeBased returns the fortune of the day: the same fortune for every call
// made on the same calendar day.
func (p *Provider) TimeBased() Fortune {
	day := time.Now().YearDay()
	return p.corpus[day%len(p.corpus)]
}

// ByID returns the fortune with the given ID. If no fortune has that ID, the
// second return value is false.
func (p *Provider) ByID(id int) (Fortune, bool) {
	if id < 0 || id >= len(p.corpus) {
		return Fortune{}, false
	}
	return p.corpus[id], true
}

// Len returns the number of fortunes in the corpus.
func (p *Provider) Len() int {
	return len(p.corpus)
}
