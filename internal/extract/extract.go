// Package extract isolates delimiter-wrapped sections from model output.
// Model responses are not schema-guaranteed: a prompt can ask for
// <thinking>...</thinking> blocks and still get back free text. Absence of
// the expected structure is therefore a normal, representable outcome here,
// never an error.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	mu    sync.RWMutex
	cache = map[string]*regexp.Regexp{}
)

// pattern returns the compiled matcher for a tag name, caching compilations.
// Tag names come from a fixed prompt vocabulary (thinking, reflection,
// output), so the cache stays tiny.
func pattern(tag string) *regexp.Regexp {
	mu.RLock()
	re, ok := cache[tag]
	mu.RUnlock()
	if ok {
		return re
	}

	mu.Lock()
	defer mu.Unlock()
	if re, ok := cache[tag]; ok {
		return re
	}
	re = regexp.MustCompile(fmt.Sprintf(`(?s)<%s>(.*?)</%s>`,
		regexp.QuoteMeta(tag), regexp.QuoteMeta(tag)))
	cache[tag] = re
	return re
}

// Tag scans text for the first well-formed <tag>...</tag> span (non-greedy,
// spanning newlines) and returns its inner content with surrounding
// whitespace trimmed. When no such span exists the original text is returned
// unchanged with found=false.
func Tag(tag, text string) (content string, found bool) {
	m := pattern(tag).FindStringSubmatch(text)
	if m == nil {
		return text, false
	}
	return strings.TrimSpace(m[1]), true
}

// Strip removes the first well-formed <tag>...</tag> span from text and
// returns the remainder, trimmed. When the span is absent the original text
// is returned unchanged.
func Strip(tag, text string) string {
	loc := pattern(tag).FindStringIndex(text)
	if loc == nil {
		return text
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}
