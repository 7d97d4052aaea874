package storage

import (
	"context"
	"testing"
	"time"

	model "go_virtual_mock/internal/domain/model/mock"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// eventStores 同一组用例覆盖所有非 MySQL 的事件存储
func eventStores(t *testing.T) map[string]EventStorageIface {
	_, client := newTestRedis(t)
	return map[string]EventStorageIface{
		"memory": NewMemoryEventStorage(),
		"redis":  NewRedisEventStorage(client),
	}
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newEvent(id, operationID string, offset time.Duration) *model.Event {
	return &model.Event{
		ID:          id,
		OperationID: operationID,
		Request:     model.RequestSnapshot{Method: "GET", URI: "/" + id},
		Response:    model.ResponseSnapshot{Kind: model.ResultRespond, StatusCode: 200},
		CreatedAt:   baseTime.Add(offset),
	}
}

func ids(events []*model.Event) []string {
	result := make([]string, 0, len(events))
	for _, e := range events {
		result = append(result, e.ID)
	}
	return result
}

func TestEventStorageSaveAndFind(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			saved, err := store.Save(ctx, newEvent("e1", "op-a", 0))
			require.NoError(t, err)
			assert.Equal(t, "e1", saved.ID)

			found, err := store.FindOne(ctx, "e1")
			require.NoError(t, err)
			assert.Equal(t, "op-a", found.OperationID)
			assert.Equal(t, "/e1", found.Request.URI)
			assert.True(t, baseTime.Equal(found.CreatedAt))

			_, err = store.FindOne(ctx, "missing")
			assert.ErrorIs(t, err, ErrRecordNotFound)
		})
	}
}

func TestEventStorageCountAndOldest(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.OldestEvent(ctx, "")
			assert.ErrorIs(t, err, ErrRecordNotFound)

			for _, e := range []*model.Event{
				newEvent("e2", "op-a", 2*time.Second),
				newEvent("e1", "op-b", time.Second),
				newEvent("e3", "op-a", 3*time.Second),
			} {
				_, err := store.Save(ctx, e)
				require.NoError(t, err)
			}

			total, err := store.CountEvents(ctx, "")
			require.NoError(t, err)
			assert.EqualValues(t, 3, total)

			total, err = store.CountEvents(ctx, "op-a")
			require.NoError(t, err)
			assert.EqualValues(t, 2, total)

			oldest, err := store.OldestEvent(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, "e1", oldest.ID)

			oldest, err = store.OldestEvent(ctx, "op-a")
			require.NoError(t, err)
			assert.Equal(t, "e2", oldest.ID)

			_, err = store.OldestEvent(ctx, "op-c")
			assert.ErrorIs(t, err, ErrRecordNotFound)
		})
	}
}

func TestEventStorageOldestTieBreak(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.Save(ctx, newEvent("e1", "op-a", 0))
			require.NoError(t, err)
			_, err = store.Save(ctx, newEvent("e2", "op-a", 0))
			require.NoError(t, err)

			oldest, err := store.OldestEvent(ctx, "op-a")
			require.NoError(t, err)
			assert.Equal(t, "e1", oldest.ID)
		})
	}
}

func TestMemoryEventStorageOldestReturnsCopy(t *testing.T) {
	store := NewMemoryEventStorage()
	ctx := context.Background()
	_, err := store.Save(ctx, newEvent("e1", "op-a", 0))
	require.NoError(t, err)

	oldest, err := store.OldestEvent(ctx, "op-a")
	require.NoError(t, err)
	oldest.OperationID = "changed"

	again, err := store.OldestEvent(ctx, "op-a")
	require.NoError(t, err)
	assert.Equal(t, "e1", again.ID)
	assert.Equal(t, "op-a", again.OperationID)
}

func TestEventStorageList(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"e1", "e2", "e3", "e4"} {
				op := "op-a"
				if i%2 == 1 {
					op = "op-b"
				}
				_, err := store.Save(ctx, newEvent(id, op, time.Duration(i)*time.Second))
				require.NoError(t, err)
			}

			events, err := store.ListEvents(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"e4", "e3", "e2", "e1"}, ids(events))

			events, err = store.ListEvents(ctx, &model.EventFilter{Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, []string{"e4", "e3"}, ids(events))

			events, err = store.ListEvents(ctx, &model.EventFilter{OperationID: "op-b"})
			require.NoError(t, err)
			assert.Equal(t, []string{"e4", "e2"}, ids(events))

			all, err := store.FindAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, ids(all))
		})
	}
}

func TestEventStorageDelete(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.Save(ctx, newEvent("e1", "op-a", 0))
			require.NoError(t, err)
			_, err = store.Save(ctx, newEvent("e2", "op-a", time.Second))
			require.NoError(t, err)

			require.NoError(t, store.Delete(ctx, "e1"))
			assert.ErrorIs(t, store.Delete(ctx, "e1"), ErrRecordNotFound)

			total, err := store.CountEvents(ctx, "op-a")
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)

			oldest, err := store.OldestEvent(ctx, "op-a")
			require.NoError(t, err)
			assert.Equal(t, "e2", oldest.ID)
		})
	}
}

func TestEventStorageClear(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"e1", "e2", "e3"} {
				op := "op-a"
				if id == "e3" {
					op = "op-b"
				}
				_, err := store.Save(ctx, newEvent(id, op, time.Duration(i)*time.Second))
				require.NoError(t, err)
			}

			removed, err := store.ClearEvents(ctx, "op-a")
			require.NoError(t, err)
			assert.EqualValues(t, 2, removed)

			total, err := store.CountEvents(ctx, "")
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)

			removed, err = store.ClearEvents(ctx, "")
			require.NoError(t, err)
			assert.EqualValues(t, 1, removed)

			total, err = store.CountEvents(ctx, "op-b")
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}
}

func TestRedisEventStorageSkipsStaleIndexMembers(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisEventStorage(client)
	ctx := context.Background()
	for i, id := range []string{"e1", "e2", "e3"} {
		_, err := store.Save(ctx, newEvent(id, "op-a", time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	// 事件内容丢失, 索引仍在
	mr.Del(eventKeyPrefix + "e1")
	mr.Del(eventKeyPrefix + "e2")

	oldest, err := store.OldestEvent(ctx, "op-a")
	require.NoError(t, err)
	assert.Equal(t, "e3", oldest.ID)

	for _, scope := range []string{"", "op-a"} {
		total, err := store.CountEvents(ctx, scope)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total, scope)
	}
}

func TestRedisEventStorageDeleteStaleMember(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisEventStorage(client)
	ctx := context.Background()
	_, err := store.Save(ctx, newEvent("e1", "", 0))
	require.NoError(t, err)
	mr.Del(eventKeyPrefix + "e1")

	assert.ErrorIs(t, store.Delete(ctx, "e1"), ErrRecordNotFound)
	total, err := store.CountEvents(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRedisEventStorageUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisEventStorage(client)
	mr.Close()

	_, err := store.CountEvents(context.Background(), "")
	assert.Error(t, err)
	_, err = store.Save(context.Background(), newEvent("e1", "op-a", 0))
	assert.Error(t, err)
}
