package repo

import (
	"context"

	model "go_virtual_mock/internal/domain/model/mock"
)

// ProjectRepositoryIface 项目仓库: 数据库为准, Redis 做缓存和 operation 索引
type ProjectRepositoryIface interface {
	SaveProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, projectID string) error
	FindByID(ctx context.Context, projectID string) (*model.Project, error)
	FindAll(ctx context.Context) ([]*model.Project, error)
	// FindOperation resolves an operation id to its project, port and definition.
	FindOperation(ctx context.Context, operationID string) (*model.OperationRef, error)
	// RemoveOperationIndex drops index entries of operations removed from their project.
	RemoveOperationIndex(ctx context.Context, operationIDs ...string)
}
