package configs

import (
	"fmt"
	"time"

	model "go_virtual_mock/internal/domain/model/mock"
)

// DatabaseConfig 数据库基础配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DatabaseOptionConfig 数据库连接池配置
type DatabaseOptionConfig struct {
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `yaml:"connMaxIdleTime"`
	LogLevel        string        `yaml:"logLevel"` // silent | error | warn | info
	SlowThreshold   time.Duration `yaml:"slowThreshold"`
	AutoMigrate     bool          `yaml:"autoMigrate"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c *DatabaseConfig) validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: database host is required", model.ErrInvalidConfiguration)
	case c.Port == 0:
		return fmt.Errorf("%w: database port is required", model.ErrInvalidConfiguration)
	case c.Username == "":
		return fmt.Errorf("%w: database username is required", model.ErrInvalidConfiguration)
	case c.Database == "":
		return fmt.Errorf("%w: database name is required", model.ErrInvalidConfiguration)
	}
	return nil
}

// 验证数据库连接池配置
func (c *DatabaseOptionConfig) validate() error {
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("%w: maxIdleConns must be positive", model.ErrInvalidConfiguration)
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("%w: maxOpenConns must be positive", model.ErrInvalidConfiguration)
	}
	if c.MaxOpenConns < c.MaxIdleConns {
		return fmt.Errorf("%w: maxOpenConns must be greater than or equal to maxIdleConns", model.ErrInvalidConfiguration)
	}
	return nil
}
