package file

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the file extension of prompt templates.
const promptExt = ".txt"

// PromptStore serves the extraction and answer templates from
// <dir>/<name>.txt. Edited files are picked up on the next Load without a
// restart. A file whose format verbs differ from the built-in template is
// ignored in favour of the default.
type PromptStore struct {
	dir      string
	defaults map[string]string

	mu     sync.Mutex
	cached map[string]cachedPrompt
	seeded bool
}

type cachedPrompt struct {
	text    string
	modTime time.Time
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.castquery/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".castquery", "prompts")
	}
	return &PromptStore{
		dir:      dir,
		defaults: driven.DefaultPrompts(),
		cached:   make(map[string]cachedPrompt),
	}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template for name. Missing, unreadable or incompatible
// files fall back to the built-in template; unknown names without a file
// are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seed()

	def, known := s.defaults[name]
	path := filepath.Join(s.dir, name+promptExt)

	info, err := os.Stat(path)
	if err != nil {
		if known {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	if c, ok := s.cached[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if known {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	text := strings.TrimSpace(string(data))
	if known && !sameVerbs(text, def) {
		logger.Warn("Prompt %s does not use the placeholders %v; using the built-in prompt",
			path, formatVerbs(def))
		text = def
	}

	s.cached[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	return text, nil
}

// Reload drops cached templates.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cached = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

// seed writes editable copies of the built-in templates once per store.
// Existing files are left alone. Failures only cost the editable copies.
func (s *PromptStore) seed() {
	if s.seeded {
		return
	}
	s.seeded = true

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		logger.Debug("Prompt directory unavailable: %v", err)
		return
	}
	for name, text := range s.defaults {
		path := filepath.Join(s.dir, name+promptExt)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(text+"\n"), 0600); err != nil {
			logger.Debug("Writing default prompt %s: %v", path, err)
		}
	}
}

var formatVerb = regexp.MustCompile(`%[sd]`)

// formatVerbs lists the fmt verbs of a template in order, ignoring "%%".
func formatVerbs(template string) []string {
	return formatVerb.FindAllString(strings.ReplaceAll(template, "%%", ""), -1)
}

func sameVerbs(a, b string) bool {
	return slices.Equal(formatVerbs(a), formatVerbs(b))
}
