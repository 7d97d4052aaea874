package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	model "go_virtual_mock/internal/domain/model/mock"

	"github.com/go-redis/redis/v8"
)

const (
	eventKeyPrefix         = "mock_event:"     // 事件内容
	eventGlobalIndexKey    = "mock_events"     // 全部事件 sorted set, score 为创建时间
	eventOperationIndexKey = "mock_events:op:" // 单个 operation 的事件 sorted set
)

// redisEventStorage 事件保存在 Redis, sorted set 按创建时间 (微秒) 排序,
// 分数相同时按成员 (时间有序的 uuid) 排序
type redisEventStorage struct {
	redisClient *redis.Client
}

var _ EventStorageIface = (*redisEventStorage)(nil)

func NewRedisEventStorage(redisClient *redis.Client) EventStorageIface {
	return &redisEventStorage{redisClient: redisClient}
}

func eventIndexKey(operationID string) string {
	if operationID == "" {
		return eventGlobalIndexKey
	}
	return eventOperationIndexKey + operationID
}

func (r *redisEventStorage) FindOne(ctx context.Context, id string) (*model.Event, error) {
	data, err := r.redisClient.Get(ctx, eventKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get event from redis: %w", err)
	}

	event := &model.Event{}
	if err := json.Unmarshal([]byte(data), event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event from JSON: %w", err)
	}
	return event, nil
}

func (r *redisEventStorage) FindAll(ctx context.Context) ([]*model.Event, error) {
	ids, err := r.redisClient.ZRange(ctx, eventGlobalIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get event index: %w", err)
	}
	return r.loadEvents(ctx, ids)
}

func (r *redisEventStorage) Save(ctx context.Context, event *model.Event) (*model.Event, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	score := float64(event.CreatedAt.UnixMicro())
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, eventKeyPrefix+event.ID, data, 0)
		pipe.ZAdd(ctx, eventGlobalIndexKey, &redis.Z{Score: score, Member: event.ID})
		if event.OperationID != "" {
			pipe.ZAdd(ctx, eventIndexKey(event.OperationID), &redis.Z{Score: score, Member: event.ID})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save event to redis: %w", err)
	}
	return event, nil
}

func (r *redisEventStorage) Delete(ctx context.Context, id string) error {
	event, err := r.FindOne(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		// 内容已丢失, 不知道所属 operation, 只能从全局索引移除
		if remErr := r.removeStaleMember(ctx, "", id); remErr != nil {
			return remErr
		}
		return err
	} else if err != nil {
		return err
	}
	return r.deleteEvents(ctx, []*model.Event{event})
}

func (r *redisEventStorage) CountEvents(ctx context.Context, operationID string) (int64, error) {
	total, err := r.redisClient.ZCard(ctx, eventIndexKey(operationID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count events from redis: %w", err)
	}
	return total, nil
}

func (r *redisEventStorage) OldestEvent(ctx context.Context, operationID string) (*model.Event, error) {
	for {
		ids, err := r.redisClient.ZRange(ctx, eventIndexKey(operationID), 0, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get oldest event from redis: %w", err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: no event in scope %q", ErrRecordNotFound, operationID)
		}
		event, err := r.FindOne(ctx, ids[0])
		if !errors.Is(err, ErrRecordNotFound) {
			return event, err
		}
		// 索引里残留的 id 不计入上限, 清掉后继续找
		if err := r.removeStaleMember(ctx, operationID, ids[0]); err != nil {
			return nil, err
		}
	}
}

// removeStaleMember 从全局索引和 operationID 的索引中移除事件内容已不存在的 id
func (r *redisEventStorage) removeStaleMember(ctx context.Context, operationID, id string) error {
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, eventGlobalIndexKey, id)
		if operationID != "" {
			pipe.ZRem(ctx, eventIndexKey(operationID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove stale event index: %w", err)
	}
	return nil
}

func (r *redisEventStorage) ListEvents(ctx context.Context, filter *model.EventFilter) ([]*model.Event, error) {
	stop := int64(-1)
	if filter != nil && filter.Limit > 0 {
		stop = int64(filter.Limit) - 1
	}
	ids, err := r.redisClient.ZRevRange(ctx, eventIndexKey(filterOperation(filter)), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list events from redis: %w", err)
	}
	return r.loadEvents(ctx, ids)
}

func (r *redisEventStorage) ClearEvents(ctx context.Context, operationID string) (int64, error) {
	ids, err := r.redisClient.ZRange(ctx, eventIndexKey(operationID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get event index: %w", err)
	}
	events, err := r.loadEvents(ctx, ids)
	if err != nil {
		return 0, err
	}
	if err := r.deleteEvents(ctx, events); err != nil {
		return 0, err
	}
	return int64(len(events)), nil
}

// loadEvents 批量读取事件, 索引中已失效的 id 被跳过
func (r *redisEventStorage) loadEvents(ctx context.Context, ids []string) ([]*model.Event, error) {
	events := make([]*model.Event, 0, len(ids))
	if len(ids) == 0 {
		return events, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = eventKeyPrefix + id
	}
	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get events from redis: %w", err)
	}

	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		event := &model.Event{}
		if err := json.Unmarshal([]byte(data), event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event from JSON: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *redisEventStorage) deleteEvents(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range events {
			pipe.Del(ctx, eventKeyPrefix+e.ID)
			pipe.ZRem(ctx, eventGlobalIndexKey, e.ID)
			if e.OperationID != "" {
				pipe.ZRem(ctx, eventIndexKey(e.OperationID), e.ID)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete events from redis: %w", err)
	}
	return nil
}
