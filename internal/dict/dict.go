// internal/dict/dict.go
//
// Dictionary of accepted words for scoring.
//
// Responsibilities:
//   - Load a newline-delimited word list from an environment-provided file,
//     or fall back to a small embedded default.
//   - Hold the words as a case-folded set for O(1) lookup.
//
// The set is immutable after load; Contains needs no locking.
//
// Environment variables:
//   DICT_FILE=/path/to/dictionary.txt
package dict

import (
	"bufio"
	_ "embed"
	"errors"
	"os"
	"strings"
)

//go:embed default_words.txt
var embeddedWords string

// Set is an immutable collection of accepted words, stored lowercase.
type Set struct {
	words map[string]struct{}
}

// New builds a Set from a word list, folding and filtering each entry.
func New(words []string) *Set {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = normalize(w)
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return &Set{words: m}
}

// Load reads one word per line from path.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(out), nil
}

// Default loads the file named by DICT_FILE, or the embedded default list
// when the variable is unset. An empty resulting set is an error.
func Default() (*Set, error) {
	var s *Set
	if path := os.Getenv("DICT_FILE"); path != "" {
		var err error
		s, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		s = New(strings.Split(embeddedWords, "\n"))
	}
	if s.Len() == 0 {
		return nil, errors.New("dict: word list is empty")
	}
	return s, nil
}

// Contains reports whether w is an accepted word. Case-insensitive.
func (s *Set) Contains(w string) bool {
	_, ok := s.words[normalize(w)]
	return ok
}

// Len returns the number of loaded words.
func (s *Set) Len() int { return len(s.words) }

// normalize lowercases and trims an entry, dropping anything that is not
// purely alphabetic.
func normalize(w string) string {
	w = strings.TrimSpace(strings.ToLower(w))
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return w
}
