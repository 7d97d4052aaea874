package main

import (
	"go_virtual_mock/app/grpc_mock_app"
	"go_virtual_mock/app/http_mock_app"
)

// mockServer REST schemas 交给 chassis, gRPC 入口单独监听
type mockServer struct {
	app  *http_mock_app.App
	grpc *grpc_mock_app.MockServer
}

func newMockServer(app *http_mock_app.App, grpc *grpc_mock_app.MockServer) *mockServer {
	return &mockServer{app: app, grpc: grpc}
}
