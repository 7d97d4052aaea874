// Package view projects stored projects into per-operation read models.
package view

import (
	"context"
	"fmt"

	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/internal/infra/repo"
)

// OperationView is a detached snapshot of one operation and its enabled responses,
// ordered by sequence position.
type OperationView struct {
	ProjectID string
	PortID    string
	Operation model.Operation
	Responses []model.MockResponse
}

type ResponseView struct {
	projects repo.ProjectRepositoryIface
}

func NewResponseView(projects repo.ProjectRepositoryIface) *ResponseView {
	return &ResponseView{projects: projects}
}

// Operation 返回 operation 的只读视图; 未知 operation 返回 ErrOperationNotFound
func (v *ResponseView) Operation(ctx context.Context, operationID string) (*OperationView, error) {
	ref, err := v.projects.FindOperation(ctx, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find operation %s: %w", operationID, err)
	}

	op := *ref.Operation
	op.MockResponses = append([]model.MockResponse(nil), ref.Operation.MockResponses...)
	op.StatusWeights = copyWeights(ref.Operation.StatusWeights)

	return &OperationView{
		ProjectID: ref.ProjectID,
		PortID:    ref.PortID,
		Operation: op,
		Responses: model.OrderedEnabledResponses(op.MockResponses),
	}, nil
}

func copyWeights(weights map[model.StatusCategory]int) map[model.StatusCategory]int {
	if weights == nil {
		return nil
	}
	copied := make(map[model.StatusCategory]int, len(weights))
	for k, w := range weights {
		copied[k] = w
	}
	return copied
}
