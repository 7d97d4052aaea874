package http_mock_app

import (
	"fmt"
	"sync/atomic"

	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/utils"

	"github.com/go-chassis/go-chassis/v2/pkg/metrics"
)

const (
	metricMockRequests   = "mock_request_total"
	metricManageRequests = "mock_manage_request_total"
)

var metricsReady atomic.Bool

// InitMetrics 注册计数器, 需要在 chassis.Init 之后调用
func InitMetrics() error {
	counters := []metrics.CounterOpts{
		{
			Name:   metricMockRequests,
			Help:   "mock calls by operation and result kind",
			Labels: []string{"operation", "result"},
		},
		{
			Name:   metricManageRequests,
			Help:   "management api calls",
			Labels: []string{"method", "endpoint"},
		},
	}
	for _, opts := range counters {
		if err := metrics.CreateCounter(opts); err != nil {
			return fmt.Errorf("failed to create counter %s: %w", opts.Name, err)
		}
	}
	metricsReady.Store(true)
	return nil
}

const unknownOperationLabel = "unknown"

// operationLabel 未解析到的 operation 统一记为 unknown, 防止任意路径撑大标签基数
func operationLabel(operationID string, result *model.ExecutionResult) string {
	switch result.ErrorKind {
	case model.ErrorKindOperationNotFound, model.ErrorKindStorageUnavailable:
		return unknownOperationLabel
	}
	if result.Event != nil && result.Event.OperationID == model.UnknownOperationID {
		return unknownOperationLabel
	}
	return operationID
}

// countRequest 未初始化时 (如单元测试) 不记录
func countRequest(name string, labels map[string]string) {
	if !metricsReady.Load() {
		return
	}
	if err := metrics.CounterAdd(name, 1, labels); err != nil {
		utils.GetLogger().Debugf("counter %s: %v", name, err)
	}
}
