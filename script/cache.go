package script

import (
	"github.com/hashicorp/golang-lru/v2"

	"github.com/vcrobe/lumin/diagnostic"
)

// DefaultCacheSize is the number of validation results kept per build.
const DefaultCacheSize = 1024

// SnippetValidator checks a snippet and returns issues relative to it.
type SnippetValidator interface {
	Validate(src string, kind SnippetKind) []diagnostic.Issue
}

type cacheKey struct {
	kind SnippetKind
	src  string
}

// Validator memoizes snippet validation. Results are snippet-relative, so
// one entry serves every file repeating the snippet. A Validator belongs to
// a single build and is not safe for concurrent use.
type Validator struct {
	inner SnippetValidator
	cache *lru.Cache[cacheKey, []diagnostic.Issue]

	hits, misses int
}

// NewValidator wraps inner with an LRU of size entries.
func NewValidator(inner SnippetValidator, size int) (*Validator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, []diagnostic.Issue](size)
	if err != nil {
		return nil, err
	}
	return &Validator{inner: inner, cache: cache}, nil
}

// Validate returns the cached result for (src, kind) or computes it.
func (v *Validator) Validate(src string, kind SnippetKind) []diagnostic.Issue {
	key := cacheKey{kind: kind, src: src}
	if issues, ok := v.cache.Get(key); ok {
		v.hits++
		return issues
	}
	v.misses++
	issues := v.inner.Validate(src, kind)
	v.cache.Add(key, issues)
	return issues
}

// Stats returns the cache hit and miss counts.
func (v *Validator) Stats() (hits, misses int) {
	return v.hits, v.misses
}
