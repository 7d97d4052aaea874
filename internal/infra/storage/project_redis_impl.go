package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/utils"

	"github.com/go-redis/redis/v8"
)

const (
	projectKeyPrefix  = "mock_project:"        // Redis Key 前缀
	operationIndexKey = "mock_operation_index" // hash: operation id -> project id
)

// NewRedisClient 创建 Redis 客户端, 未启用时返回 nil
func NewRedisClient(c *configs.MockConfig) (*redis.Client, error) {
	rc := c.RedisConfig
	if !rc.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         rc.Addr(),
		Password:     rc.Password,
		DB:           rc.Database,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		MaxRetries:   rc.MaxRetries,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		PoolTimeout:  rc.PoolTimeout,
		IdleTimeout:  rc.IdleTimeout,
	})

	// 测试连接是否成功
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	utils.GetLogger().Infof("connected to redis %s", rc.Addr())
	return client, nil
}

type projectRedisCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

var _ ProjectCacheIface = (*projectRedisCache)(nil)

// NewProjectCache Redis 未启用时使用空实现, 所有读取都视为未命中
func NewProjectCache(redisClient *redis.Client, c *configs.MockConfig) ProjectCacheIface {
	if redisClient == nil {
		return noopProjectCache{}
	}
	return &projectRedisCache{redisClient: redisClient, ttl: c.RedisConfig.CacheTTL}
}

func (r *projectRedisCache) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	key := projectKeyPrefix + projectID
	data, err := r.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		utils.GetLogger().Debugf("project %s not found in cache", projectID)
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get project from redis: %w", err)
	}

	project := &model.Project{}
	if err := json.Unmarshal([]byte(data), project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project from JSON: %w", err)
	}
	return project, nil
}

func (r *projectRedisCache) SetProject(ctx context.Context, project *model.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project to JSON: %w", err)
	}
	if err := r.redisClient.Set(ctx, projectKeyPrefix+project.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set project to redis: %w", err)
	}
	return nil
}

func (r *projectRedisCache) DeleteProject(ctx context.Context, projectID string) error {
	if err := r.redisClient.Del(ctx, projectKeyPrefix+projectID).Err(); err != nil {
		return fmt.Errorf("failed to delete project from redis: %w", err)
	}
	return nil
}

func (r *projectRedisCache) GetOperationIndex(ctx context.Context, operationID string) (string, error) {
	projectID, err := r.redisClient.HGet(ctx, operationIndexKey, operationID).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: operation %s", ErrCacheMiss, operationID)
	} else if err != nil {
		return "", fmt.Errorf("failed to get operation index: %w", err)
	}
	return projectID, nil
}

// SetOperationIndex 记录项目下所有 operation 的归属
func (r *projectRedisCache) SetOperationIndex(ctx context.Context, project *model.Project) error {
	ids := model.OperationIDs(project)
	if len(ids) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(ids))
	for _, id := range ids {
		values[id] = project.ID
	}
	if err := r.redisClient.HSet(ctx, operationIndexKey, values).Err(); err != nil {
		return fmt.Errorf("failed to update operation index: %w", err)
	}
	return nil
}

func (r *projectRedisCache) RemoveOperationIndex(ctx context.Context, operationIDs ...string) error {
	if len(operationIDs) == 0 {
		return nil
	}
	if err := r.redisClient.HDel(ctx, operationIndexKey, operationIDs...).Err(); err != nil {
		return fmt.Errorf("failed to remove operation index: %w", err)
	}
	return nil
}

type noopProjectCache struct{}

var _ ProjectCacheIface = noopProjectCache{}

func (noopProjectCache) GetProject(_ context.Context, projectID string) (*model.Project, error) {
	return nil, fmt.Errorf("%w: %s", ErrCacheMiss, projectID)
}

func (noopProjectCache) SetProject(context.Context, *model.Project) error { return nil }

func (noopProjectCache) DeleteProject(context.Context, string) error { return nil }

func (noopProjectCache) GetOperationIndex(_ context.Context, operationID string) (string, error) {
	return "", fmt.Errorf("%w: operation %s", ErrCacheMiss, operationID)
}

func (noopProjectCache) SetOperationIndex(context.Context, *model.Project) error { return nil }

func (noopProjectCache) RemoveOperationIndex(context.Context, ...string) error { return nil }
