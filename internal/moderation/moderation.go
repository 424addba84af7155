// Package moderation holds the list of substrings that may not appear in
// submission titles.
package moderation

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed words.txt
var bundled embed.FS

const bundledName = "words.txt"

// WordSet is immutable once built and safe for concurrent reads.
type WordSet struct {
	words []string
}

// New builds a WordSet from the given words, skipping blanks.
func New(words ...string) *WordSet {
	ws := &WordSet{words: make([]string, 0, len(words))}
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		ws.words = append(ws.words, w)
	}
	return ws
}

// Parse reads a line-oriented word list. The first line is a header and is
// discarded.
func Parse(r io.Reader) (*WordSet, error) {
	scanner := bufio.NewScanner(r)
	var words []string
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read moderation words: %w", err)
	}
	return New(words...), nil
}

// Load parses name from fsys. Any failure yields an empty set: moderation is
// a best-effort filter and must not keep the proxy from starting.
func Load(fsys fs.FS, name string, logger *logrus.Logger) *WordSet {
	f, err := fsys.Open(name)
	if err != nil {
		logger.WithError(err).WithField("file", name).Warn("moderation word list unavailable, moderation disabled")
		return New()
	}
	defer f.Close()

	ws, err := Parse(f)
	if err != nil {
		logger.WithError(err).WithField("file", name).Warn("moderation word list unreadable, moderation disabled")
		return New()
	}
	logger.WithFields(logrus.Fields{"file": name, "words": ws.Len()}).Info("moderation word list loaded")
	return ws
}

// Default loads the word list bundled into the binary.
func Default(logger *logrus.Logger) *WordSet {
	return Load(bundled, bundledName, logger)
}

// FromFile loads a word list from disk, or the bundled one when path is empty.
func FromFile(path string, logger *logrus.Logger) *WordSet {
	if path == "" {
		return Default(logger)
	}
	return Load(os.DirFS(filepath.Dir(path)), filepath.Base(path), logger)
}

// Match returns the first word that occurs in s as a plain substring.
func (ws *WordSet) Match(s string) (string, bool) {
	if ws == nil || s == "" {
		return "", false
	}
	for _, w := range ws.words {
		if strings.Contains(s, w) {
			return w, true
		}
	}
	return "", false
}

func (ws *WordSet) Len() int {
	if ws == nil {
		return 0
	}
	return len(ws.words)
}
