package publisher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadQueue parses a publish queue: one slug per line, blank lines and
// lines starting with '#' ignored. A missing file is an empty queue.
func ReadQueue(path string) ([]string, error) {
	//nolint:gosec // G304: path comes from configuration
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open publish queue: %w", err)
	}
	defer f.Close()
	return ParseQueue(f)
}

// ParseQueue reads queue lines from r.
func ParseQueue(r io.Reader) ([]string, error) {
	var slugs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		slugs = append(slugs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read publish queue: %w", err)
	}
	return slugs, nil
}
