// Package eventlog keeps a bounded history of served requests.
//
// Capacity is enforced at write time: when the scope already holds maxEventCount
// events, the single oldest one is deleted right before the new one is inserted.
package eventlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go_virtual_mock/internal/domain/iface"
	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/internal/infra/storage"
	"go_virtual_mock/utils"

	"github.com/google/uuid"
)

type EventLog struct {
	store         storage.EventStorageIface
	maxEventCount int
	scope         model.EventScope
	locks         sync.Map // scope key -> *sync.Mutex
	now           func() time.Time
}

var _ iface.EventService = (*EventLog)(nil)

func NewEventLog(store storage.EventStorageIface, c *configs.EventConfig) (*EventLog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &EventLog{
		store:         store,
		maxEventCount: c.MaxEventCount,
		scope:         c.Scope,
		now:           time.Now,
	}, nil
}

func (l *EventLog) MaxEventCount() int {
	return l.maxEventCount
}

func (l *EventLog) Scope() model.EventScope {
	return l.scope
}

// scopeKey 全局范围为空串, 否则为 operation id
func (l *EventLog) scopeKey(event *model.Event) string {
	if l.scope == model.EventScopeOperation {
		return event.OperationID
	}
	return ""
}

func (l *EventLog) lock(key string) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrStorageUnavailable, err)
}

// RecordEvent stores event, evicting the oldest event of its scope when the scope is full.
// A missing id or timestamp is filled in. Storage failures are reported, never retried.
func (l *EventLog) RecordEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.ID == "" {
		event.ID = newEventID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.now()
	}
	// datetime(6) 精度
	event.CreatedAt = event.CreatedAt.UTC().Truncate(time.Microsecond)

	key := l.scopeKey(event)
	mu := l.lock(key)
	mu.Lock()
	defer mu.Unlock()

	count, err := l.store.CountEvents(ctx, key)
	if err != nil {
		return nil, storageErr("failed to count events", err)
	}
	if count >= int64(l.maxEventCount) {
		if err := l.evictOldest(ctx, key); err != nil {
			return nil, err
		}
	}

	saved, err := l.store.Save(ctx, event)
	if err != nil {
		return nil, storageErr("failed to save event", err)
	}
	return saved, nil
}

// RecordEvents imports events one by one with the same check-evict-insert step,
// stopping at the first failure. It returns the events stored so far.
func (l *EventLog) RecordEvents(ctx context.Context, events []*model.Event) ([]*model.Event, error) {
	stored := make([]*model.Event, 0, len(events))
	for _, e := range events {
		saved, err := l.RecordEvent(ctx, e)
		if err != nil {
			return stored, err
		}
		stored = append(stored, saved)
	}
	return stored, nil
}

func (l *EventLog) evictOldest(ctx context.Context, key string) error {
	oldest, err := l.store.OldestEvent(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil
		}
		return storageErr("failed to find oldest event", err)
	}
	if err := l.store.Delete(ctx, oldest.ID); err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return storageErr("failed to evict event", err)
	}
	utils.GetLogger().Debugf("evicted event %s of operation %s", oldest.ID, oldest.OperationID)
	return nil
}

// OldestEvent returns the earliest event of operationID, or of all operations when empty.
func (l *EventLog) OldestEvent(ctx context.Context, operationID string) (*model.Event, error) {
	event, err := l.store.OldestEvent(ctx, operationID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no event for scope %q", model.ErrEventNotFound, operationID)
		}
		return nil, storageErr("failed to find oldest event", err)
	}
	return event, nil
}

// DeleteEvent 幂等, 删除不存在的事件视为成功
func (l *EventLog) DeleteEvent(ctx context.Context, eventID string) error {
	if err := l.store.Delete(ctx, eventID); err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return storageErr("failed to delete event", err)
	}
	return nil
}

func (l *EventLog) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := l.store.FindOne(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", model.ErrEventNotFound, eventID)
		}
		return nil, storageErr("failed to get event", err)
	}
	return event, nil
}

func (l *EventLog) ListEvents(ctx context.Context, filter *model.EventFilter) ([]*model.Event, error) {
	events, err := l.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, storageErr("failed to list events", err)
	}
	return events, nil
}

// ClearEvents 清空 operation 的事件, operationID 为空时清空全部
func (l *EventLog) ClearEvents(ctx context.Context, operationID string) (int64, error) {
	removed, err := l.store.ClearEvents(ctx, operationID)
	if err != nil {
		return 0, storageErr("failed to clear events", err)
	}
	return removed, nil
}

// newEventID 时间有序的 UUIDv7, 同一时间戳的事件按生成顺序排序
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
