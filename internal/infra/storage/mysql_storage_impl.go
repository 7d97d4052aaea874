package storage

import (
	"context"
	"errors"
	"fmt"

	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/utils"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewMySQLClient 创建 gorm 客户端, 没有任何存储使用 MySQL 时返回 nil
func NewMySQLClient(c *configs.MockConfig) (*gorm.DB, error) {
	if !c.UsesMySQL() {
		return nil, nil
	}

	opts := c.DatabaseOptionConfig
	db, err := gorm.Open(mysql.Open(c.DatabaseConfig.GetDSN()), &gorm.Config{
		Logger: logger.New(utils.GetLogger(), logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  gormLogLevel(opts.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	if opts.AutoMigrate {
		if err := db.AutoMigrate(&model.Project{}, &model.Event{}); err != nil {
			return nil, fmt.Errorf("failed to migrate tables: %w", err)
		}
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// gormRepository 基于 gorm 的通用存储, 主键列为 id
type gormRepository[T any] struct {
	db *gorm.DB
}

func newGormRepository[T any](db *gorm.DB) *gormRepository[T] {
	return &gormRepository[T]{db: db}
}

var _ Repository[model.Project] = (*gormRepository[model.Project])(nil)

func (s *gormRepository[T]) FindOne(ctx context.Context, id string) (*T, error) {
	entity := new(T)
	if err := s.db.WithContext(ctx).First(entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to get record from mysql: %w", err)
	}
	return entity, nil
}

func (s *gormRepository[T]) FindAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list records from mysql: %w", err)
	}
	return entities, nil
}

func (s *gormRepository[T]) Save(ctx context.Context, entity *T) (*T, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(entity).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save record to mysql: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entity, nil
}

func (s *gormRepository[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete record from mysql: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return nil
}

// mysqlEventStorage events 表, 按 (operation_id, created_at) 建索引
type mysqlEventStorage struct {
	*gormRepository[model.Event]
}

var _ EventStorageIface = (*mysqlEventStorage)(nil)

func NewMysqlEventStorage(db *gorm.DB) EventStorageIface {
	return &mysqlEventStorage{gormRepository: newGormRepository[model.Event](db)}
}

func NewMysqlProjectStorage(db *gorm.DB) ProjectStorageIface {
	return newGormRepository[model.Project](db)
}

func (s *mysqlEventStorage) scoped(ctx context.Context, operationID string) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&model.Event{})
	if operationID != "" {
		db = db.Where("operation_id = ?", operationID)
	}
	return db
}

func (s *mysqlEventStorage) CountEvents(ctx context.Context, operationID string) (int64, error) {
	var total int64
	if err := s.scoped(ctx, operationID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count events from mysql: %w", err)
	}
	return total, nil
}

func (s *mysqlEventStorage) OldestEvent(ctx context.Context, operationID string) (*model.Event, error) {
	event := &model.Event{}
	err := s.scoped(ctx, operationID).Order("created_at asc").Order("id asc").First(event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no event in scope %q", ErrRecordNotFound, operationID)
		}
		return nil, fmt.Errorf("failed to get oldest event from mysql: %w", err)
	}
	return event, nil
}

func (s *mysqlEventStorage) ListEvents(ctx context.Context, filter *model.EventFilter) ([]*model.Event, error) {
	var events []*model.Event
	db := s.scoped(ctx, filterOperation(filter)).Order("created_at desc").Order("id desc")
	if filter != nil && filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if err := db.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events from mysql: %w", err)
	}
	return events, nil
}

func (s *mysqlEventStorage) ClearEvents(ctx context.Context, operationID string) (int64, error) {
	db := s.db.WithContext(ctx)
	if operationID == "" {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	} else {
		db = db.Where("operation_id = ?", operationID)
	}
	res := db.Delete(&model.Event{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear events from mysql: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func filterOperation(filter *model.EventFilter) string {
	if filter == nil {
		return ""
	}
	return filter.OperationID
}

