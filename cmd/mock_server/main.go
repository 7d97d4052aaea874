package main

import (
	"os"

	"go_virtual_mock/app/http_mock_app"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/utils"

	"github.com/go-chassis/go-chassis/v2"
)

func main() {
	cfg, err := configs.LoadMockConfig()
	if err != nil {
		utils.GetLogger().Fatalf("load config err: %v", err)
	}
	logger := utils.InitLogger(cfg.LogConfig.Path, cfg.LogConfig.Level)

	server, err := InitializeServer()
	if err != nil {
		logger.Fatalf("initialize app err: %v", err)
	}
	for _, schema := range server.app.Schemas() {
		chassis.RegisterSchema("rest", schema)
	}

	if err := chassis.Init(); err != nil {
		logger.Errorf("chassis init err: %v", err)
		os.Exit(1)
	}
	if err := http_mock_app.InitMetrics(); err != nil {
		logger.Warnf("init metrics err: %v", err)
	}

	if cfg.GRPCConfig.Enabled {
		if err := server.grpc.Start(); err != nil {
			logger.Errorf("grpc mock server start err: %v", err)
			os.Exit(1)
		}
		defer server.grpc.Stop()
	}

	logger.Infof("mock server started, event capacity %d (%s scope, %s store)",
		cfg.EventConfig.MaxEventCount, cfg.EventConfig.Scope, cfg.EventConfig.Store)
	if err := chassis.Run(); err != nil {
		logger.Errorf("chassis run err: %v", err)
	}
}
