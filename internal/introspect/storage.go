// Package introspect implements the storage filter/diff, authorization tree
// builder, budget meter, event extractor, and ledger-entry inspector the
// Execution Engine and CLI surface read from a host facade and from captured
// timeline snapshots.
package introspect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
)

// FilterPattern is one disjunct of a StorageFilter.
type FilterPattern struct {
	kind  patternKind
	value string
	re    *regexp.Regexp
}

type patternKind int

const (
	patternPrefix patternKind = iota
	patternRegex
	patternExact
)

// ParsePattern applies the parse rule: `re:<regex>` →
// Regex; suffix `*` → Prefix; otherwise Exact.
func ParsePattern(s string) (FilterPattern, error) {
	if strings.HasPrefix(s, "re:") {
		expr := strings.TrimPrefix(s, "re:")
		re, err := regexp.Compile(expr)
		if err != nil {
			return FilterPattern{}, dbgerr.Storage("invalid storage filter regex: "+expr, err)
		}
		return FilterPattern{kind: patternRegex, value: expr, re: re}, nil
	}
	if strings.HasSuffix(s, "*") {
		return FilterPattern{kind: patternPrefix, value: strings.TrimSuffix(s, "*")}, nil
	}
	return FilterPattern{kind: patternExact, value: s}, nil
}

// Matches reports whether the pattern matches key.
func (p FilterPattern) Matches(key string) bool {
	switch p.kind {
	case patternPrefix:
		return strings.HasPrefix(key, p.value)
	case patternRegex:
		return p.re.MatchString(key)
	case patternExact:
		return key == p.value
	default:
		return false
	}
}

// StorageFilter is a disjunction of FilterPatterns. An empty filter set is a
// tautology (matches all keys).
type StorageFilter struct {
	Patterns []FilterPattern
}

// NewStorageFilter parses each raw pattern string and builds a filter.
func NewStorageFilter(raw []string) (*StorageFilter, error) {
	f := &StorageFilter{}
	for _, s := range raw {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, err
		}
		f.Patterns = append(f.Patterns, p)
	}
	return f, nil
}

// Matches reports F.matches(k) iff ∃p ∈ F.patterns with p.matches(k), or F
// is empty.
func (f *StorageFilter) Matches(key string) bool {
	if len(f.Patterns) == 0 {
		return true
	}
	for _, p := range f.Patterns {
		if p.Matches(key) {
			return true
		}
	}
	return false
}

// Apply returns the subset of storage whose keys match f, as a map with no
// defined key order; SortedKeys gives the keys in total string order.
func (f *StorageFilter) Apply(storage map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range storage {
		if f.Matches(k) {
			out[k] = v
		}
	}
	return out
}

// SortedKeys returns storage's keys in total string order.
func SortedKeys(storage map[string]string) []string {
	keys := make([]string, 0, len(storage))
	for k := range storage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StorageDiff is the result of comparing two storage snapshots.
type StorageDiff struct {
	Added    map[string]string
	Modified map[string][2]string // key -> [before, after]
	Deleted  map[string]string
}

// IsEmpty reports whether the diff has no added, modified, or deleted keys.
func (d StorageDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Deleted) == 0
}

// DiffStorage compares before and after storage maps.
func DiffStorage(before, after map[string]string) StorageDiff {
	d := StorageDiff{Added: map[string]string{}, Modified: map[string][2]string{}, Deleted: map[string]string{}}
	for k, av := range after {
		if bv, ok := before[k]; ok {
			if bv != av {
				d.Modified[k] = [2]string{bv, av}
			}
		} else {
			d.Added[k] = av
		}
	}
	for k, bv := range before {
		if _, ok := after[k]; !ok {
			d.Deleted[k] = bv
		}
	}
	return d
}
