// Package naming derives per-input artifact names and keeps them unique
// within one run.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Stem returns the base name of path without its final extension.
// Dotfiles keep their name: Stem(".hidden") is ".hidden".
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// CollisionResolver hands out artifact names per input and resolves
// duplicates by appending " - dupN". All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // artifact name → input that claimed it
	counters map[string]int    // requested name → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the artifact name for input. The requested name is used
// when it is free or already owned by input; otherwise the first free
// "<name> - dupN" is claimed.
func (cr *CollisionResolver) Resolve(input, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if owner, taken := cr.owners[requested]; !taken || owner == input {
		cr.owners[requested] = input
		return requested
	}

	n := cr.counters[requested]
	if n == 0 {
		n = 1
	}
	for ; ; n++ {
		candidate := fmt.Sprintf("%s - dup%d", requested, n)
		if owner, taken := cr.owners[candidate]; !taken || owner == input {
			cr.counters[requested] = n + 1
			cr.owners[candidate] = input
			return candidate
		}
	}
}
