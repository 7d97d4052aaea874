package configs

import (
	"fmt"
	"os"
	"time"

	model "go_virtual_mock/internal/domain/model/mock"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "MOCK_CONFIG_PATH"
	EnvConfigEnv  = "MOCK_ENV"
)

// 存储驱动
const (
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// MockConfig 服务配置
type MockConfig struct {
	DatabaseConfig       DatabaseConfig       `yaml:"database"`
	DatabaseOptionConfig DatabaseOptionConfig `yaml:"databaseConfig"`
	RedisConfig          RedisConfig          `yaml:"redis"`
	StorageConfig        StorageConfig        `yaml:"storage"`
	ProjectRepoConfig    ProjectRepoConfig    `yaml:"projectRepo"`
	EventConfig          EventConfig          `yaml:"event"`
	ForwardConfig        ForwardConfig        `yaml:"forward"`
	GRPCConfig           GRPCConfig           `yaml:"grpc"`
	LogConfig            LogConfig            `yaml:"log"`
}

// StorageConfig selects the backend of projects.
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"` // mysql | memory
}

// ProjectRepoConfig 封装 projectRepoImpl 的配置参数
type ProjectRepoConfig struct {
	RedisCacheRetryCount  int           `json:"redisCacheRetryCount" yaml:"redisCacheRetryCount"`
	RedisCacheRetryDelay  time.Duration `json:"redisCacheRetryDelay" yaml:"redisCacheRetryDelay"`
	SaveProjectRetryCount int           `json:"saveProjectRetryCount" yaml:"saveProjectRetryCount"`
	SaveProjectRetryDelay time.Duration `json:"saveProjectRetryDelay" yaml:"saveProjectRetryDelay"`
	IndexUpdateRetryCount int           `json:"indexUpdateRetryCount" yaml:"indexUpdateRetryCount"`
	IndexUpdateRetryDelay time.Duration `json:"indexUpdateRetryDelay" yaml:"indexUpdateRetryDelay"`
	IndexUpdatePoolSize   int           `json:"indexUpdatePoolSize" yaml:"indexUpdatePoolSize"`
}

// EventConfig 事件日志配置, 运行期间不可修改
type EventConfig struct {
	MaxEventCount int              `json:"maxEventCount" yaml:"maxEventCount"`
	Scope         model.EventScope `json:"scope" yaml:"scope"` // global | operation
	Store         string           `json:"store" yaml:"store"` // mysql | redis | memory
}

// Validate rejects a capacity that can never hold an event.
func (c *EventConfig) Validate() error {
	if c.MaxEventCount <= 0 {
		return fmt.Errorf("%w: event.maxEventCount must be positive, got %d", model.ErrInvalidConfiguration, c.MaxEventCount)
	}
	if !c.Scope.IsValid() {
		return fmt.Errorf("%w: unknown event scope %q", model.ErrInvalidConfiguration, c.Scope)
	}
	return nil
}

type ForwardConfig struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// GRPCConfig gRPC mock 入口, 方法 /<service>/<operationId> 映射到 operation
type GRPCConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Listen  string `json:"listen" yaml:"listen"`
}

type LogConfig struct {
	Path  string `json:"path" yaml:"path"`
	Level string `json:"level" yaml:"level"`
}

// LoadMockConfig 加载配置
func LoadMockConfig() (*MockConfig, error) {
	configFile, err := os.ReadFile(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseMockConfig(configFile)
}

// ParseMockConfig parses, defaults and validates a yaml document.
func ParseMockConfig(data []byte) (*MockConfig, error) {
	config := &MockConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// getConfigPath 获取配置文件路径, 优先使用环境变量
func getConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	env := os.Getenv(EnvConfigEnv)
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("mock.%s.yaml", env)
}

func (c *MockConfig) applyDefaults() {
	if c.StorageConfig.Driver == "" {
		c.StorageConfig.Driver = DriverMySQL
	}
	if c.EventConfig.Scope == "" {
		c.EventConfig.Scope = model.EventScopeGlobal
	}
	if c.EventConfig.Store == "" {
		c.EventConfig.Store = c.StorageConfig.Driver
	}
	if c.ForwardConfig.Timeout <= 0 {
		c.ForwardConfig.Timeout = 30 * time.Second
	}
	if c.GRPCConfig.Listen == "" {
		c.GRPCConfig.Listen = ":9090"
	}

	repo := &c.ProjectRepoConfig
	if repo.RedisCacheRetryCount <= 0 {
		repo.RedisCacheRetryCount = 3
	}
	if repo.SaveProjectRetryCount <= 0 {
		repo.SaveProjectRetryCount = 3
	}
	if repo.IndexUpdateRetryCount <= 0 {
		repo.IndexUpdateRetryCount = 3
	}
	if repo.IndexUpdatePoolSize <= 0 {
		repo.IndexUpdatePoolSize = 10
	}
}

// validate 验证配置
func (c *MockConfig) validate() error {
	if err := c.EventConfig.Validate(); err != nil {
		return err
	}

	switch c.StorageConfig.Driver {
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", model.ErrInvalidConfiguration, c.StorageConfig.Driver)
	}
	switch c.EventConfig.Store {
	case DriverMySQL, DriverMemory:
	case DriverRedis:
		if !c.RedisConfig.Enabled {
			return fmt.Errorf("%w: redis event store requires redis.enabled", model.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown event store %q", model.ErrInvalidConfiguration, c.EventConfig.Store)
	}

	if c.UsesMySQL() {
		if err := c.DatabaseConfig.validate(); err != nil {
			return err
		}
		if err := c.DatabaseOptionConfig.validate(); err != nil {
			return err
		}
	}
	if c.RedisConfig.Enabled && c.RedisConfig.Host == "" {
		return fmt.Errorf("%w: redis host is required", model.ErrInvalidConfiguration)
	}
	return nil
}

// UsesMySQL reports whether any store is backed by MySQL.
func (c *MockConfig) UsesMySQL() bool {
	return c.StorageConfig.Driver == DriverMySQL || c.EventConfig.Store == DriverMySQL
}

func NewEventConfig(c *MockConfig) *EventConfig {
	return &c.EventConfig
}

func NewForwardConfig(c *MockConfig) *ForwardConfig {
	return &c.ForwardConfig
}

func NewGRPCConfig(c *MockConfig) *GRPCConfig {
	return &c.GRPCConfig
}

func NewLogConfig(c *MockConfig) *LogConfig {
	return &c.LogConfig
}
