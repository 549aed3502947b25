package cards

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	PromptsFile   = "prompts.txt"
	ResponsesFile = "responses.txt"
	TakedownsFile = "takedowns.txt"
)

// LoadDir builds a catalog from the card files in dir. The takedowns file
// is optional.
func LoadDir(dir string) (*Catalog, error) {
	prompts, err := readFile(filepath.Join(dir, PromptsFile))
	if err != nil {
		return nil, err
	}
	responses, err := readFile(filepath.Join(dir, ResponsesFile))
	if err != nil {
		return nil, err
	}
	takedowns, err := readFile(filepath.Join(dir, TakedownsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return NewCatalog(prompts, responses, takedowns), nil
}

// ReadLines returns every non-blank line of r, trimmed.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening card file: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}
