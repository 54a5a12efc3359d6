// Package wordlist loads word and digraph lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// LoadWords reads one word per line from the provided file path. Blank lines
// and lines starting with '#' are skipped; a non-nil keep drops words it
// rejects.
func LoadWords(path string, keep FilterFunc) ([]string, error) {
	var words []string
	err := scanLines(path, func(_ int, line string) error {
		if keep == nil || keep(line) {
			words = append(words, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// LoadDigraphs reads one two-character pair per line, lowercased.
func LoadDigraphs(path string) ([]string, error) {
	var pairs []string
	err := scanLines(path, func(n int, line string) error {
		pair := strings.ToLower(line)
		if utf8.RuneCountInString(pair) != 2 {
			return fmt.Errorf("line %d: digraph %q must be two characters", n, line)
		}
		pairs = append(pairs, pair)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("digraph list is empty")
	}
	return pairs, nil
}

func scanLines(path string, fn func(n int, line string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only list.
			_ = cerr
		}
	}()

	scanner := bufio.NewScanner(file)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
