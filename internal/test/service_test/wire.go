//go:build wireinject
// +build wireinject

package servicetest

import (
	"go_virtual_mock/internal/domain/services"

	"github.com/google/wire"
)

func InitializeServiceTest() (*ServiceTestSuite, error) {
	wire.Build(services.ServiceSet, NewServiceTestSuite)
	return &ServiceTestSuite{}, nil
}
