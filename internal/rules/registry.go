package rules

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Rule)
	mu       sync.RWMutex
)

func Register(r Rule) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[r.ID()]; exists {
		panic(fmt.Sprintf("rule %s already registered", r.ID()))
	}
	registry[r.ID()] = r
}

func List() []Rule {
	mu.RLock()
	defer mu.RUnlock()
	return listLocked()
}

func listLocked() []Rule {
	var rules []Rule
	for _, r := range registry {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID() < rules[j].ID()
	})
	return rules
}

// Get returns the rule registered under id.
func Get(id string) (Rule, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[id]
	return r, ok
}

// Recommended returns the rules enabled by `extends: recommended`, sorted by ID.
func Recommended() []Rule {
	mu.RLock()
	defer mu.RUnlock()
	var out []Rule
	for _, r := range listLocked() {
		if r.Recommended() {
			out = append(out, r)
		}
	}
	return out
}
