// Package footnote implements spec.md §4.9's FootnoteTracker: deduplicated,
// sequentially numbered citations rendered as a Markdown Sources block.
package footnote

import (
	"fmt"
	"strings"
	"sync"

	"github.com/phazer-schmid/phasergun/internal/chunk"
)

type entryKind int

const (
	kindChunk entryKind = iota
	kindStandard
)

type entry struct {
	kind        entryKind
	category    chunk.Category
	fileName    string
	chunkIndex  int
	name        string
	description string
}

// Tracker assigns sequential integer ids to chunks and regulatory
// standards, deduplicating by source key so the same chunk or standard
// referenced twice keeps one id.
type Tracker struct {
	mu      sync.Mutex
	ids     map[string]int
	order   []string
	entries map[string]entry
	next    int
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		ids:     make(map[string]int),
		entries: make(map[string]entry),
		next:    1,
	}
}

func chunkKey(category chunk.Category, fileName string, chunkIndex int) string {
	return fmt.Sprintf("%s|%s|%d", category, fileName, chunkIndex)
}

func standardKey(name string) string {
	return "standard|" + name
}

// AddChunk records a chunk citation, returning its id. A chunk already
// seen under the same (category, fileName, chunkIndex) returns its
// existing id.
func (t *Tracker) AddChunk(category chunk.Category, fileName string, chunkIndex int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := chunkKey(category, fileName, chunkIndex)
	if id, ok := t.ids[key]; ok {
		return id
	}

	id := t.next
	t.next++
	t.ids[key] = id
	t.order = append(t.order, key)
	t.entries[key] = entry{kind: kindChunk, category: category, fileName: fileName, chunkIndex: chunkIndex}
	return id
}

// AddStandard records a regulatory standard citation, returning its id,
// with the same dedup rule as AddChunk.
func (t *Tracker) AddStandard(name, description string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := standardKey(name)
	if id, ok := t.ids[key]; ok {
		return id
	}

	id := t.next
	t.next++
	t.ids[key] = id
	t.order = append(t.order, key)
	t.entries[key] = entry{kind: kindStandard, name: name, description: description}
	return id
}

// Render emits a Markdown "## Sources" block with one line per id in
// assignment order.
func (t *Tracker) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.order) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Sources\n")
	for _, key := range t.order {
		e := t.entries[key]
		id := t.ids[key]
		switch e.kind {
		case kindChunk:
			kind := "Procedure"
			if e.category == chunk.CategoryContext {
				kind = "Context"
			}
			fmt.Fprintf(&b, "[%d] %s: %s (Section %d)\n", id, kind, e.fileName, e.chunkIndex)
		case kindStandard:
			fmt.Fprintf(&b, "[%d] Regulatory Standard: %s — %s\n", id, e.name, e.description)
		}
	}
	return b.String()
}

// Reset clears all recorded citations and returns the counter to 0.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = make(map[string]int)
	t.entries = make(map[string]entry)
	t.order = nil
	t.next = 1
}
