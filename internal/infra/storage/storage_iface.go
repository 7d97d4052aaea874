package storage

import (
	"context"
	"errors"

	model "go_virtual_mock/internal/domain/model/mock"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrCacheMiss      = errors.New("cache miss")
)

// Repository 通用的实体存储接口
type Repository[T any] interface {
	FindOne(ctx context.Context, id string) (*T, error)
	FindAll(ctx context.Context) ([]*T, error)
	// Save inserts or replaces the entity and returns the stored copy.
	Save(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type ProjectStorageIface = Repository[model.Project]

// EventStorageIface 事件存储, operationID 为空表示全局范围
type EventStorageIface interface {
	Repository[model.Event]

	CountEvents(ctx context.Context, operationID string) (int64, error)
	// OldestEvent returns the event with the lowest CreatedAt, ties broken by insertion order.
	OldestEvent(ctx context.Context, operationID string) (*model.Event, error)
	// ListEvents returns events newest first.
	ListEvents(ctx context.Context, filter *model.EventFilter) ([]*model.Event, error)
	ClearEvents(ctx context.Context, operationID string) (int64, error)
}

// ProjectCacheIface 项目缓存和 operation -> project 索引
type ProjectCacheIface interface {
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	SetProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, projectID string) error

	GetOperationIndex(ctx context.Context, operationID string) (string, error)
	SetOperationIndex(ctx context.Context, project *model.Project) error
	RemoveOperationIndex(ctx context.Context, operationIDs ...string) error
}
