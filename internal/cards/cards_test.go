package cards

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Why did ___ cross the ___?", 2},
		{"What ended my last relationship? ____", 1},
		{"No blanks here.", 1},
		{"A single _ underscore is not a blank.", 1},
		{"__ and __ and __", 3},
		{"snake_case_name has no blanks", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, PickCount(tt.text))
		})
	}
}

func TestNewPrompt(t *testing.T) {
	p := NewPrompt("Why did ___ cross the ___?")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 2, p.PickCount)
}

func TestCatalog_EmptyDraws(t *testing.T) {
	c := NewCatalog(nil, nil, nil)

	_, err := c.DrawPrompt()
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = c.DrawResponse()
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	assert.NotEmpty(t, c.DrawTakedown(), "takedown falls back to a default line")
}

func TestCatalog_Draws(t *testing.T) {
	c := NewCatalog([]string{"Only ___"}, []string{"a", "b", "c"}, []string{"burn"})

	p, err := c.DrawPrompt()
	require.NoError(t, err)
	assert.Equal(t, "Only ___", p.Text)

	seen := map[string]bool{}
	for range 200 {
		r, err := c.DrawResponse()
		require.NoError(t, err)
		seen[r.Text] = true
	}
	assert.Len(t, seen, 3, "draws should cover every response")
	assert.Equal(t, "burn", c.DrawTakedown())
}

func TestCatalog_Replace(t *testing.T) {
	c := NewCatalog([]string{"old ___"}, []string{"old"}, nil)
	before, err := c.DrawResponse()
	require.NoError(t, err)

	c.Replace([]string{"new ___", "newer ___"}, []string{"fresh"})

	prompts, responses := c.Counts()
	assert.Equal(t, 2, prompts)
	assert.Equal(t, 1, responses)

	after, err := c.DrawResponse()
	require.NoError(t, err)
	assert.Equal(t, "fresh", after.Text)
	assert.Equal(t, "old", before.Text, "cards drawn earlier keep their values")
}

func TestCatalog_ConcurrentDrawAndReplace(t *testing.T) {
	c := NewCatalog([]string{"p ___"}, []string{"r"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.DrawResponse()
		}()
		go func() {
			defer wg.Done()
			c.Replace([]string{"p ___"}, []string{"r", "s"})
		}()
	}
	wg.Wait()

	_, responses := c.Counts()
	assert.Equal(t, 2, responses)
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("first\n\n   \n  second  \nthird"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(PromptsFile, "Why did ___ cross the ___?\n\nBest snack: ___\n")
	write(ResponsesFile, "A goose\nTax season\n")

	c, err := LoadDir(dir)
	require.NoError(t, err)

	prompts, responses := c.Counts()
	assert.Equal(t, 2, prompts)
	assert.Equal(t, 2, responses)
	assert.Equal(t, 2, c.Prompts()[0].PickCount)
}

func TestLoadDir_MissingResponses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PromptsFile), []byte("x ___"), 0o644))

	_, err := LoadDir(dir)
	assert.Error(t, err)
}
