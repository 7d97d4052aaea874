package iface

import (
	"context"

	model "go_virtual_mock/internal/domain/model/mock"
)

// MockExecutionService 处理一次 mock 调用
type MockExecutionService interface {
	// Handle 查找 operation, 选择响应并记录事件. 返回值不为 nil
	Handle(ctx context.Context, operationID string, req *model.RequestContext) *model.ExecutionResult
}

// ProjectService 项目管理接口
type ProjectService interface {
	CreateProject(ctx context.Context, project *model.Project) (*model.Project, error)
	UpdateProject(ctx context.Context, projectID string, update *model.Project) (*model.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	FindProjectByName(ctx context.Context, name string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)

	CreatePort(ctx context.Context, projectID string, port *model.Port) (*model.Port, error)
	UpdatePort(ctx context.Context, projectID, portID string, update *model.Port) (*model.Port, error)
	// DeletePort 同时删除端口下的所有 operation
	DeletePort(ctx context.Context, projectID, portID string) error

	CreateOperation(ctx context.Context, projectID, portID string, op *model.Operation) (*model.Operation, error)
	UpdateOperation(ctx context.Context, projectID, portID, operationID string, update *model.Operation) (*model.Operation, error)
	DeleteOperation(ctx context.Context, projectID, portID, operationID string) error

	CreateMockResponse(ctx context.Context, projectID, portID, operationID string, resp *model.MockResponse) (*model.MockResponse, error)
	UpdateMockResponse(ctx context.Context, projectID, portID, operationID, responseID string, update *model.MockResponse) (*model.MockResponse, error)
	DeleteMockResponse(ctx context.Context, projectID, portID, operationID, responseID string) error

	// OperationStatusCount 统计各状态的 operation 数量, 所有状态都会出现
	OperationStatusCount(ctx context.Context, projectID string) (map[model.OperationStatus]int, error)
}

// EventService 事件查询与清理
type EventService interface {
	ListEvents(ctx context.Context, filter *model.EventFilter) ([]*model.Event, error)
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ClearEvents(ctx context.Context, operationID string) (int64, error)
}
