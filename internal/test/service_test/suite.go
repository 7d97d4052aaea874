package servicetest

import "go_virtual_mock/internal/domain/iface"

type ServiceTestSuite struct {
	Projects  iface.ProjectService
	Execution iface.MockExecutionService
	Events    iface.EventService
}

func NewServiceTestSuite(p iface.ProjectService, e iface.MockExecutionService, ev iface.EventService) *ServiceTestSuite {
	return &ServiceTestSuite{Projects: p, Execution: e, Events: ev}
}
