package services

import (
	"context"
	"fmt"

	"go_virtual_mock/internal/domain/iface"
	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/internal/domain/selector"
	"go_virtual_mock/internal/domain/view"
	"go_virtual_mock/utils"

	"github.com/sirupsen/logrus"
)

// OperationViewer 提供 operation 的只读视图
type OperationViewer interface {
	Operation(ctx context.Context, operationID string) (*view.OperationView, error)
}

// EventRecorder 记录事件, 负责容量淘汰
type EventRecorder interface {
	RecordEvent(ctx context.Context, event *model.Event) (*model.Event, error)
}

// MockExecutionService handles one mock call: view lookup, selection, result and event.
type MockExecutionService struct {
	view     OperationViewer
	selector *selector.Selector
	events   EventRecorder
}

var _ iface.MockExecutionService = (*MockExecutionService)(nil)

func NewMockExecutionService(v OperationViewer, s *selector.Selector, events EventRecorder) *MockExecutionService {
	return &MockExecutionService{
		view:     v,
		selector: s,
		events:   events,
	}
}

// Handle never returns nil. Every call is recorded as an event, failed calls included;
// a recording failure is attached to the result without changing what is delivered.
func (s *MockExecutionService) Handle(ctx context.Context, operationID string, req *model.RequestContext) *model.ExecutionResult {
	if req == nil {
		req = &model.RequestContext{}
	}
	event := &model.Event{OperationID: operationID}

	result := s.execute(ctx, operationID, req, event)

	event.Request = req.Snapshot()
	event.Response = result.Snapshot()
	saved, err := s.events.RecordEvent(ctx, event)
	if err != nil {
		utils.GetLogger().WithFields(logrus.Fields{
			"operation": operationID,
			"result":    result.Kind,
		}).Errorf("failed to record event: %v", err)
		result.RecordErr = err
	} else {
		result.Event = saved
	}
	return result
}

func (s *MockExecutionService) execute(ctx context.Context, operationID string, req *model.RequestContext, event *model.Event) *model.ExecutionResult {
	log := utils.GetLogger().WithField("operation", operationID)

	ov, err := s.view.Operation(ctx, operationID)
	if err != nil {
		log.Warnf("operation lookup failed: %v", err)
		// 请求的 id 保留在错误信息里
		event.OperationID = model.UnknownOperationID
		return model.Failed(err)
	}
	event.ProjectID = ov.ProjectID
	event.PortID = ov.PortID

	decision, err := s.selector.Select(&ov.Operation, ov.Responses, req)
	if err != nil {
		log.Warnf("no response selected: %v", err)
		return model.Failed(err)
	}

	switch decision.Kind {
	case model.ResultRespond:
		log.Debugf("selected mock response %s", decision.Response.ID)
		return model.Respond(decision.Response)
	case model.ResultForward:
		return model.Forward(decision.ForwardURL)
	case model.ResultEcho:
		return model.Echo(req)
	case model.ResultServiceUnavailable:
		return model.ServiceUnavailable()
	default:
		return model.Failed(fmt.Errorf("unknown decision kind %s", decision.Kind))
	}
}
