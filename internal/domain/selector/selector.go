// Package selector decides which mock response answers a call.
//
// Selection is a pure function of the operation, its candidate responses and the
// request, except for the SEQUENCE strategy which keeps one cursor per operation.
package selector

import (
	"fmt"
	"math/rand/v2"

	model "go_virtual_mock/internal/domain/model/mock"
)

// Decision is what the selector tells the execution service to do.
type Decision struct {
	Kind       model.ResultKind
	Response   *model.MockResponse // set when Kind is ResultRespond
	ForwardURL string              // set when Kind is ResultForward
}

type Selector struct {
	cursors *sequenceCursors
	intN    func(n int) int
}

// NewSelector uses the process-wide math/rand/v2 source.
func NewSelector() *Selector {
	return NewSelectorWithRand(rand.IntN)
}

// NewSelectorWithRand 使用指定的随机函数, 便于测试
func NewSelectorWithRand(intN func(n int) int) *Selector {
	return &Selector{
		cursors: newSequenceCursors(),
		intN:    intN,
	}
}

// Select picks the outcome for operation. candidates may contain disabled responses;
// they are filtered out before any strategy runs.
func (s *Selector) Select(op *model.Operation, candidates []model.MockResponse, req *model.RequestContext) (*Decision, error) {
	switch op.Status {
	case model.OperationStatusDisabled:
		return &Decision{Kind: model.ResultServiceUnavailable}, nil
	case model.OperationStatusForwarded:
		return &Decision{Kind: model.ResultForward, ForwardURL: op.ForwardedEndpoint}, nil
	case model.OperationStatusEcho:
		return &Decision{Kind: model.ResultEcho}, nil
	case model.OperationStatusMocked, model.OperationStatusRecording:
	default:
		return nil, fmt.Errorf("unknown operation status %q", op.Status)
	}

	enabled := model.OrderedEnabledResponses(candidates)
	if len(enabled) == 0 {
		return nil, fmt.Errorf("%w: operation %s has no enabled response", model.ErrNoAvailableResponse, op.ID)
	}

	var (
		resp *model.MockResponse
		err  error
	)
	switch op.ResponseStrategy {
	case model.StrategySequence:
		resp = s.selectSequence(op.ID, enabled)
	case model.StrategyStatusSimulation:
		resp, err = s.selectByStatus(op, enabled, req)
	case model.StrategyJSONPath:
		resp, err = selectByJSONPath(enabled, req)
	default:
		resp = s.pick(enabled)
	}
	if err != nil {
		return nil, err
	}
	return &Decision{Kind: model.ResultRespond, Response: resp}, nil
}

// ResetSequence restarts the cursor of an operation at its first position.
func (s *Selector) ResetSequence(operationID string) {
	s.cursors.reset(operationID)
}

func (s *Selector) selectSequence(operationID string, enabled []model.MockResponse) *model.MockResponse {
	cursor := s.cursors.next(operationID)
	return &enabled[cursor%uint64(len(enabled))]
}

// pick 在候选集中均匀随机选择一个
func (s *Selector) pick(candidates []model.MockResponse) *model.MockResponse {
	return &candidates[s.intN(len(candidates))]
}
