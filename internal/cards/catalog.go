package cards

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var ErrEmptyCatalog = errors.New("card catalog is empty")

const defaultTakedown = "I'd roast you, but the deck ran out of material."

// Catalog holds the prompt, response and takedown sets. Sets are replaced
// wholesale; cards already dealt keep their values.
type Catalog struct {
	mu        sync.RWMutex
	prompts   []Prompt
	responses []Response
	takedowns []string

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewCatalog(prompts, responses, takedowns []string) *Catalog {
	c := &Catalog{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	c.Replace(prompts, responses)
	c.SetTakedowns(takedowns)
	return c
}

// Replace swaps both card sets at once.
func (c *Catalog) Replace(prompts, responses []string) {
	ps := make([]Prompt, 0, len(prompts))
	for _, text := range prompts {
		ps = append(ps, NewPrompt(text))
	}
	rs := make([]Response, 0, len(responses))
	for _, text := range responses {
		rs = append(rs, NewResponse(text))
	}

	c.mu.Lock()
	c.prompts = ps
	c.responses = rs
	c.mu.Unlock()
}

func (c *Catalog) SetTakedowns(lines []string) {
	ts := append([]string(nil), lines...)
	c.mu.Lock()
	c.takedowns = ts
	c.mu.Unlock()
}

func (c *Catalog) DrawPrompt() (Prompt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.prompts) == 0 {
		return Prompt{}, ErrEmptyCatalog
	}
	return c.prompts[c.intn(len(c.prompts))], nil
}

func (c *Catalog) DrawResponse() (Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.responses) == 0 {
		return Response{}, ErrEmptyCatalog
	}
	return c.responses[c.intn(len(c.responses))], nil
}

func (c *Catalog) DrawTakedown() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.takedowns) == 0 {
		return defaultTakedown
	}
	return c.takedowns[c.intn(len(c.takedowns))]
}

func (c *Catalog) Prompts() []Prompt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Prompt(nil), c.prompts...)
}

func (c *Catalog) Responses() []Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Response(nil), c.responses...)
}

// Counts returns the number of prompts and responses currently loaded.
func (c *Catalog) Counts() (prompts, responses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prompts), len(c.responses)
}

func (c *Catalog) intn(n int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.Intn(n)
}
