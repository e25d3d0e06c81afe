// Package cache memoizes generation responses. Generation is
// deterministic, so a response can be reused for an identical request.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/pipeline"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// DefaultSize is the number of responses kept when no size is given.
const DefaultSize = 256

// Generator produces a response for a request. *pipeline.Pipeline
// implements it.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) *pipeline.Response
}

// Memo wraps a Generator with an LRU of successful responses. Failed
// responses are never stored, nor are responses whose requested formatting
// fell back to the unformatted code.
type Memo struct {
	next   Generator
	cache  *lru.Cache[string, *pipeline.Response]
	log    logger.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// New creates a memo holding up to size responses.
func New(next Generator, size int, log logger.Logger) (*Memo, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	c, err := lru.New[string, *pipeline.Response](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &Memo{next: next, cache: c, log: log}, nil
}

// Generate returns the cached response for req or computes it.
func (m *Memo) Generate(ctx context.Context, req pipeline.Request) *pipeline.Response {
	key, err := Key(req)
	if err != nil {
		m.log.Warn("uncacheable request", logger.Err(err))
		return m.next.Generate(ctx, req)
	}

	if resp, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		m.log.Debug("cache hit", logger.F("key", key[:12]))
		return clone(resp)
	}
	m.misses.Add(1)

	resp := m.next.Generate(ctx, req)
	if cacheable(req, resp) {
		m.cache.Add(key, clone(resp))
	}
	return resp
}

// cacheable reports whether resp may answer later identical requests. A
// formatter failure is not deterministic, so its fallback is not kept.
func cacheable(req pipeline.Request, resp *pipeline.Response) bool {
	if resp == nil || !resp.Success {
		return false
	}
	return !(req.Options.Format && req.Options.UseFormatter) || resp.Formatted
}

// Stats returns the hit and miss counters.
func (m *Memo) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load(), Entries: m.cache.Len()}
}

// Purge drops every cached response.
func (m *Memo) Purge() {
	m.cache.Purge()
}

// Key derives the cache key of a request: a hash of the source combined
// with the generation context and options.
func Key(req pipeline.Request) (string, error) {
	source := sha256.Sum256([]byte(req.Source))
	req.Source = ""
	rest, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	h := sha256.New()
	h.Write(source[:])
	h.Write(rest)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// clone copies the slices of a response so callers cannot change what the
// cache holds.
func clone(r *pipeline.Response) *pipeline.Response {
	cp := *r
	cp.Imports = append(cp.Imports[:0:0], r.Imports...)
	for i := range cp.Imports {
		cp.Imports[i].Specifiers = append(cp.Imports[i].Specifiers[:0:0], r.Imports[i].Specifiers...)
	}
	cp.Exports = append(cp.Exports[:0:0], r.Exports...)
	for i := range cp.Exports {
		cp.Exports[i].Specifiers = append(cp.Exports[i].Specifiers[:0:0], r.Exports[i].Specifiers...)
	}
	cp.Suggestions = append([]optimizer.Suggestion(nil), r.Suggestions...)
	if r.Cost != nil {
		cost := optimizer.Cost{Total: r.Cost.Total, Breakdown: make(map[string]int, len(r.Cost.Breakdown))}
		for k, v := range r.Cost.Breakdown {
			cost.Breakdown[k] = v
		}
		cp.Cost = &cost
	}
	return &cp
}
