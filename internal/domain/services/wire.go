package services

import (
	"go_virtual_mock/internal/domain/eventlog"
	"go_virtual_mock/internal/domain/iface"
	"go_virtual_mock/internal/domain/selector"
	"go_virtual_mock/internal/domain/view"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/internal/infra/repo"

	"github.com/google/wire"
)

var ServiceSet = wire.NewSet(
	repo.RepoSet,
	configs.NewEventConfig,
	selector.NewSelector,
	view.NewResponseView,
	wire.Bind(new(OperationViewer), new(*view.ResponseView)),
	eventlog.NewEventLog,
	wire.Bind(new(EventRecorder), new(*eventlog.EventLog)),
	wire.Bind(new(iface.EventService), new(*eventlog.EventLog)),
	NewMockExecutionService,
	wire.Bind(new(iface.MockExecutionService), new(*MockExecutionService)),
	NewProjectManageService,
	wire.Bind(new(iface.ProjectService), new(*ProjectManageService)),
)
