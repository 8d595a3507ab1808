package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"shopapp/internal/shopquery"
)

// MemoryIndex is an in-process Index for local development and tests.
// Text matching is a case-insensitive match of any query term against the
// words of the shop name; results are ordered by number of matched terms.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[uint]ShopDocument
	// Fail, when set, is returned by every call.
	Fail error
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[uint]ShopDocument)}
}

func (m *MemoryIndex) EnsureSchema(context.Context) error { return m.Fail }

func (m *MemoryIndex) Ping(context.Context) error { return m.Fail }

func (m *MemoryIndex) Upsert(ctx context.Context, docs ...ShopDocument) error {
	if m.Fail != nil {
		return m.Fail
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return nil
}

func (m *MemoryIndex) Delete(_ context.Context, id uint) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MemoryIndex) Purge(context.Context) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[uint]ShopDocument)
	return nil
}

// Get returns the stored document for id.
func (m *MemoryIndex) Get(id uint) (ShopDocument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	return d, ok
}

// Len returns the number of stored documents.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) Search(_ context.Context, text string, f shopquery.Filter) ([]uint, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	terms := strings.Fields(strings.ToLower(text))

	type hit struct {
		id    uint
		score int
	}
	m.mu.RLock()
	hits := make([]hit, 0)
	for _, d := range m.docs {
		ok, err := matches(d, f)
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		if !ok {
			continue
		}
		if score := termScore(d.Name, terms); score > 0 {
			hits = append(hits, hit{id: d.ID, score: score})
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})
	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids, nil
}

func termScore(name string, terms []string) int {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(name)) {
		words[w] = struct{}{}
	}
	score := 0
	for _, t := range terms {
		if _, ok := words[t]; ok {
			score++
		}
	}
	return score
}

func matches(d ShopDocument, f shopquery.Filter) (bool, error) {
	for _, c := range f {
		switch c.Field {
		case shopquery.FieldInVacations:
			v, ok := c.Value.(bool)
			if !ok || c.Op != shopquery.OpEq {
				return false, fmt.Errorf("unsupported clause on %s", c.Field)
			}
			if d.InVacations != v {
				return false, nil
			}
		case shopquery.FieldCreatedAt:
			ok, err := matchTime(d.CreatedAt, c)
			if err != nil || !ok {
				return false, err
			}
		default:
			return false, fmt.Errorf("unsupported filter field %q", c.Field)
		}
	}
	return true, nil
}

func matchTime(t time.Time, c shopquery.Clause) (bool, error) {
	v, ok := c.Value.(time.Time)
	if !ok {
		return false, fmt.Errorf("createdAt clause needs a time value")
	}
	switch c.Op {
	case shopquery.OpEq:
		return t.Equal(v), nil
	case shopquery.OpGt:
		return t.After(v), nil
	case shopquery.OpLt:
		return t.Before(v), nil
	case shopquery.OpBetween:
		hi, ok := c.Upper.(time.Time)
		if !ok {
			return false, fmt.Errorf("createdAt clause needs a time upper bound")
		}
		return !t.Before(v) && !t.After(hi), nil
	default:
		return false, fmt.Errorf("unsupported filter op %s", c.Op)
	}
}
