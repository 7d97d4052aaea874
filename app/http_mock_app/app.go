// Package http_mock_app exposes the mock server over go-chassis REST routes.
package http_mock_app

import (
	"go_virtual_mock/internal/domain/services"
	configs "go_virtual_mock/internal/infra/config"

	"github.com/google/wire"
)

// App 所有需要注册到 chassis 的 schema
type App struct {
	Mock   *MockController
	Manage *ManageController
	Events *EventController
}

func NewApp(mock *MockController, manage *ManageController, events *EventController) *App {
	return &App{
		Mock:   mock,
		Manage: manage,
		Events: events,
	}
}

func (a *App) Schemas() []interface{} {
	return []interface{}{a.Mock, a.Manage, a.Events}
}

var AppSet = wire.NewSet(
	services.ServiceSet,
	configs.NewForwardConfig,
	NewHTTPForwarder,
	NewMockController,
	NewManageController,
	NewEventController,
	NewApp,
)
