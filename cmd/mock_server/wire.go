//go:build wireinject
// +build wireinject

package main

import (
	"go_virtual_mock/app/grpc_mock_app"
	"go_virtual_mock/app/http_mock_app"

	"github.com/google/wire"
)

func InitializeServer() (*mockServer, error) {
	wire.Build(http_mock_app.AppSet, grpc_mock_app.GRPCSet, newMockServer)
	return &mockServer{}, nil
}
