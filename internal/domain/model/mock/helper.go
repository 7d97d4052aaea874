package model

import (
	"fmt"
	"strings"
)

// FindProjectByName 按名称查找项目 (不区分大小写)
func FindProjectByName(projects []*Project, name string) *Project {
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// FindPort returns the port with portID inside project.
func FindPort(project *Project, portID string) (*Port, error) {
	for i := range project.Ports {
		if project.Ports[i].ID == portID {
			return &project.Ports[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPortNotFound, portID)
}

// FindOperation returns the operation with operationID inside project/port.
func FindOperation(project *Project, portID, operationID string) (*Operation, error) {
	port, err := FindPort(project, portID)
	if err != nil {
		return nil, err
	}
	for i := range port.Operations {
		if port.Operations[i].ID == operationID {
			return &port.Operations[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
}

// FindMockResponse returns the mock response with responseID inside operation.
func FindMockResponse(operation *Operation, responseID string) (*MockResponse, error) {
	for i := range operation.MockResponses {
		if operation.MockResponses[i].ID == responseID {
			return &operation.MockResponses[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMockResponseNotFound, responseID)
}

// LocateOperation 在项目中查找操作, 返回其所属项目和端口
func LocateOperation(project *Project, operationID string) (*OperationRef, bool) {
	for i := range project.Ports {
		port := &project.Ports[i]
		for j := range port.Operations {
			if port.Operations[j].ID == operationID {
				return &OperationRef{
					ProjectID: project.ID,
					PortID:    port.ID,
					Operation: &port.Operations[j],
				}, true
			}
		}
	}
	return nil, false
}

// LocateOperationInProjects walks every project for operationID.
func LocateOperationInProjects(projects []*Project, operationID string) (*OperationRef, error) {
	for _, p := range projects {
		if ref, ok := LocateOperation(p, operationID); ok {
			return ref, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
}

// OperationIDs lists every operation id of the project.
func OperationIDs(project *Project) []string {
	ids := make([]string, 0)
	for _, port := range project.Ports {
		for _, op := range port.Operations {
			ids = append(ids, op.ID)
		}
	}
	return ids
}

// CountOperationStatuses 统计项目内各状态的操作数量, 所有状态都会出现在结果中
func CountOperationStatuses(project *Project) map[OperationStatus]int {
	statuses := make(map[OperationStatus]int, len(OperationStatuses()))
	for _, s := range OperationStatuses() {
		statuses[s] = 0
	}
	for _, port := range project.Ports {
		for _, op := range port.Operations {
			statuses[op.Status]++
		}
	}
	return statuses
}
