package storage

import (
	"fmt"

	configs "go_virtual_mock/internal/infra/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// StorageSet is a Wire provider set that includes all storage-related providers
var StorageSet = wire.NewSet(
	configs.LoadMockConfig,
	NewMySQLClient,
	NewRedisClient,
	NewProjectStorage,
	NewEventStorage,
	NewProjectCache,
)

// NewProjectStorage 按 storage.driver 选择项目存储
func NewProjectStorage(c *configs.MockConfig, db *gorm.DB) (ProjectStorageIface, error) {
	switch c.StorageConfig.Driver {
	case configs.DriverMySQL:
		if db == nil {
			return nil, fmt.Errorf("mysql project storage requires a database client")
		}
		return NewMysqlProjectStorage(db), nil
	case configs.DriverMemory:
		return NewMemoryProjectStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageConfig.Driver)
	}
}

// NewEventStorage 按 event.store 选择事件存储
func NewEventStorage(c *configs.MockConfig, db *gorm.DB, redisClient *redis.Client) (EventStorageIface, error) {
	switch c.EventConfig.Store {
	case configs.DriverMySQL:
		if db == nil {
			return nil, fmt.Errorf("mysql event storage requires a database client")
		}
		return NewMysqlEventStorage(db), nil
	case configs.DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis event storage requires a redis client")
		}
		return NewRedisEventStorage(redisClient), nil
	case configs.DriverMemory:
		return NewMemoryEventStorage(), nil
	default:
		return nil, fmt.Errorf("unknown event store %q", c.EventConfig.Store)
	}
}
