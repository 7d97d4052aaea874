package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	model "go_virtual_mock/internal/domain/model/mock"
)

// memoryRepository 进程内存储, 保留插入顺序; 读写都复制实体, 调用方不会共享内部状态
type memoryRepository[T any] struct {
	mu    sync.RWMutex
	idOf  func(*T) string
	items map[string]*T
	order []string
}

func newMemoryRepository[T any](idOf func(*T) string) *memoryRepository[T] {
	return &memoryRepository[T]{
		idOf:  idOf,
		items: make(map[string]*T),
	}
}

var _ Repository[model.Project] = (*memoryRepository[model.Project])(nil)

func NewMemoryProjectStorage() ProjectStorageIface {
	return newMemoryRepository(func(p *model.Project) string { return p.ID })
}

func (s *memoryRepository[T]) FindOne(_ context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return clone(entity)
}

func (s *memoryRepository[T]) FindAll(_ context.Context) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]*T, 0, len(s.order))
	for _, id := range s.order {
		entity, err := clone(s.items[id])
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (s *memoryRepository[T]) Save(_ context.Context, entity *T) (*T, error) {
	id := s.idOf(entity)
	if id == "" {
		return nil, fmt.Errorf("failed to save record: empty id")
	}
	stored, err := clone(entity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = stored
	return entity, nil
}

func (s *memoryRepository[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone[T any](entity *T) (*T, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to copy record: %w", err)
	}
	copied := new(T)
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, fmt.Errorf("failed to copy record: %w", err)
	}
	return copied, nil
}

type memoryEventStorage struct {
	*memoryRepository[model.Event]
}

var _ EventStorageIface = (*memoryEventStorage)(nil)

func NewMemoryEventStorage() EventStorageIface {
	return &memoryEventStorage{
		memoryRepository: newMemoryRepository(func(e *model.Event) string { return e.ID }),
	}
}

// scoped 返回范围内的事件, 按插入顺序
func (s *memoryEventStorage) scoped(ctx context.Context, operationID string) ([]*model.Event, error) {
	events, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if operationID == "" {
		return events, nil
	}
	filtered := events[:0]
	for _, e := range events {
		if e.OperationID == operationID {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *memoryEventStorage) CountEvents(_ context.Context, operationID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if operationID == "" {
		return int64(len(s.order)), nil
	}
	var total int64
	for _, id := range s.order {
		if s.items[id].OperationID == operationID {
			total++
		}
	}
	return total, nil
}

// OldestEvent 只复制找到的那一条
func (s *memoryEventStorage) OldestEvent(_ context.Context, operationID string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest *model.Event
	for _, id := range s.order {
		e := s.items[id]
		if operationID != "" && e.OperationID != operationID {
			continue
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, fmt.Errorf("%w: no event in scope %q", ErrRecordNotFound, operationID)
	}
	return clone(oldest)
}

func (s *memoryEventStorage) ListEvents(ctx context.Context, filter *model.EventFilter) ([]*model.Event, error) {
	events, err := s.scoped(ctx, filterOperation(filter))
	if err != nil {
		return nil, err
	}

	// 最新的在前, 时间相同时后插入的在前
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	if filter != nil && filter.Limit > 0 && len(events) > filter.Limit {
		events = events[:filter.Limit]
	}
	return events, nil
}

func (s *memoryEventStorage) ClearEvents(_ context.Context, operationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		removed int64
		kept    = make([]string, 0, len(s.order))
	)
	for _, id := range s.order {
		if operationID == "" || s.items[id].OperationID == operationID {
			delete(s.items, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}
