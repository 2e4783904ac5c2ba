// Package prompts holds the text-generation prompt templates. Each JSON file
// maps a part name to a template with {{.Key}} placeholders and is embedded
// at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/career-finder/internal/schemas"
)

//go:embed *.json
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Set is one parsed prompt file.
type Set struct {
	name      string
	templates map[string]string
}

var (
	setsMu sync.Mutex
	sets   = make(map[string]*Set)
)

// Load reads, validates and caches the named prompt file.
func Load(filename string) (*Set, error) {
	setsMu.Lock()
	defer setsMu.Unlock()

	if set, ok := sets[filename]; ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := schemas.Validate(schemas.PromptSet, data); err != nil {
		return nil, fmt.Errorf("invalid prompt file %s: %w", filename, err)
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	set := &Set{name: filename, templates: templates}
	sets[filename] = set
	return set, nil
}

// Keys returns the part names in the set, sorted.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Placeholders returns the distinct placeholder names used by a part, in order of first use.
func (s *Set) Placeholders(key string) ([]string, error) {
	template, ok := s.templates[key]
	if !ok {
		return nil, fmt.Errorf("prompt key %q not found in %s", key, s.name)
	}
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names, nil
}

// Render fills one part. Every placeholder must have a value; substituted
// values are not expanded again.
func (s *Set) Render(key string, data map[string]string) (string, error) {
	template, ok := s.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, s.name)
	}

	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		value, ok := data[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s: no value for %s", s.name, key, strings.Join(missing, ", "))
	}
	return out, nil
}

// Parts renders the parts named by keys, in order, with the same data.
func Parts(filename string, keys []string, data map[string]string) ([]string, error) {
	set, err := Load(filename)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		part, err := set.Render(key, data)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}
