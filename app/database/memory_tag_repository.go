package database

import (
	"sort"
	"sync"
	"time"
)

var _ TagRepository = (*MemoryTagRepository)(nil)

// MemoryTagRepository keeps tags in a process-local map. Used by tests and
// early bootstrap before a database is wired up; it intentionally mirrors
// SQLTagRepository's semantics (unique, case-sensitive names).
type MemoryTagRepository struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*Tag
}

func NewMemoryTagRepository() *MemoryTagRepository {
	return &MemoryTagRepository{
		nextID: 1,
		byName: make(map[string]*Tag),
	}
}

func (r *MemoryTagRepository) GetOrCreateTag(name string) (*Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tag, ok := r.byName[name]; ok {
		copied := *tag
		return &copied, nil
	}

	tag := &Tag{
		ID:        r.nextID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.byName[name] = tag

	copied := *tag
	return &copied, nil
}

func (r *MemoryTagRepository) GetTagByName(name string) (*Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, ok := r.byName[name]
	if !ok {
		return nil, nil
	}

	copied := *tag
	return &copied, nil
}

func (r *MemoryTagRepository) GetTagCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byName), nil
}

// ListTags returns tags sorted by name. Article counts are not tracked in
// memory and report as zero.
func (r *MemoryTagRepository) ListTags(limit int) ([]TagCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags := make([]TagCount, 0, len(r.byName))
	for _, tag := range r.byName {
		tags = append(tags, TagCount{Tag: *tag})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}

	return tags, nil
}
