package repository

import (
	"context"
	"sort"
	"sync"

	resourceserrors "spacebook/internal/resources/errors"
	"spacebook/pkg/model"
)

type memoryResourceRepository struct {
	mu   sync.RWMutex
	byID map[string]model.Resource
}

func NewMemoryResourceRepository() ResourceRepository {
	return &memoryResourceRepository{byID: make(map[string]model.Resource)}
}

func (m *memoryResourceRepository) Create(_ context.Context, r *model.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = *r
	return nil
}

func (m *memoryResourceRepository) FindByID(_ context.Context, id string) (*model.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, resourceserrors.ErrNotFound
	}
	return &r, nil
}

func (m *memoryResourceRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Resource, error) {
	m.mu.RLock()
	all := make([]*model.Resource, 0, len(m.byID))
	for _, r := range m.byID {
		all = append(all, &r)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})

	if offset >= int64(len(all)) {
		return []*model.Resource{}, nil
	}
	end := min(int(offset)+limit, len(all))
	return all[offset:end], nil
}

func (m *memoryResourceRepository) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byID)), nil
}

func (m *memoryResourceRepository) Update(_ context.Context, r *model.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; !ok {
		return resourceserrors.ErrNotFound
	}
	m.byID[r.ID] = *r
	return nil
}

func (m *memoryResourceRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return resourceserrors.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}
