package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/internal/infra/storage"
	"go_virtual_mock/utils"

	"github.com/avast/retry-go/v4"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

// projectRepoImpl 实现了 ProjectRepositoryIface (singleflight 并发控制, retry-go, ants pool)
type projectRepoImpl struct {
	projectStorage storage.ProjectStorageIface
	projectCache   storage.ProjectCacheIface
	config         *configs.ProjectRepoConfig
	taskPool       *ants.Pool
	sfGroup        singleflight.Group
	generations    sync.Map // project id -> *atomic.Uint64, 每次写库后递增
}

// 确保 projectRepoImpl 实现了 ProjectRepositoryIface 接口 (编译时检查)
var _ ProjectRepositoryIface = (*projectRepoImpl)(nil)

// indexUpdateRequest 异步索引更新请求
type indexUpdateRequest struct {
	ctx           context.Context
	project       *model.Project
	operationIDs  []string
	operationType indexOperationType
}

type indexOperationType string

const (
	indexOperationTypeUpdate indexOperationType = "update"
	indexOperationTypeRemove indexOperationType = "remove"
)

func NewProjectRepoConfig(c *configs.MockConfig) *configs.ProjectRepoConfig {
	return &c.ProjectRepoConfig
}

func NewProjectRepoImpl(projectStorage storage.ProjectStorageIface, projectCache storage.ProjectCacheIface, config *configs.ProjectRepoConfig) (ProjectRepositoryIface, error) {
	taskPool, err := ants.NewPool(config.IndexUpdatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	return &projectRepoImpl{
		projectStorage: projectStorage,
		projectCache:   projectCache,
		config:         config,
		taskPool:       taskPool,
	}, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrStorageUnavailable, err)
}

// FindByID 先查缓存, 未命中则查数据库并回填缓存
func (r *projectRepoImpl) FindByID(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := r.projectCache.GetProject(ctx, projectID)
	if err == nil {
		utils.GetLogger().Debugf("project found in cache: %s", projectID)
		return project, nil
	}
	if !errors.Is(err, storage.ErrCacheMiss) {
		utils.GetLogger().Warnf("project cache unavailable, fallback to db: %v", err)
	}

	// 使用 singleflight 防止缓存击穿; key 带上 generation, 保存之后的读取不会复用保存之前发起的查询
	gen := r.generation(projectID)
	before := gen.Load()
	data, err, shared := r.sfGroup.Do(fmt.Sprintf("find_project_%s_%d", projectID, before), func() (interface{}, error) {
		project, err := r.projectStorage.FindOne(ctx, projectID)
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
			}
			return nil, storageErr("failed to get project from db", err)
		}

		err = retry.Do(
			func() error {
				return r.projectCache.SetProject(ctx, project)
			},
			retry.Attempts(uint(r.config.RedisCacheRetryCount)),
			retry.Delay(r.config.RedisCacheRetryDelay),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			utils.GetLogger().Warnf("failed to set project cache: %v", err)
		}

		// 查询期间项目被写过, 回填的可能是旧数据
		if gen.Load() != before {
			if err := r.invalidateCache(ctx, projectID); err != nil {
				utils.GetLogger().Warnf("failed to drop stale project cache %s: %v", projectID, err)
			}
		}
		return project, nil
	})
	if err != nil {
		return nil, err
	}

	project = data.(*model.Project)
	if shared {
		// 多个调用方拿到同一个结果时各自持有副本
		return cloneProject(project)
	}
	return project, nil
}

// FindAll 列出全部项目
func (r *projectRepoImpl) FindAll(ctx context.Context) ([]*model.Project, error) {
	data, err, _ := r.sfGroup.Do("find_all_projects", func() (interface{}, error) {
		projects, err := r.projectStorage.FindAll(ctx)
		if err != nil {
			return nil, storageErr("failed to list projects from db", err)
		}
		return projects, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]*model.Project), nil
}

// FindOperation 优先通过 Redis 索引定位项目; 索引缺失或过期时扫描全部项目并异步回填索引
func (r *projectRepoImpl) FindOperation(ctx context.Context, operationID string) (*model.OperationRef, error) {
	projectID, err := r.projectCache.GetOperationIndex(ctx, operationID)
	if err == nil {
		project, err := r.FindByID(ctx, projectID)
		switch {
		case err == nil:
			if ref, ok := model.LocateOperation(project, operationID); ok {
				return ref, nil
			}
			utils.GetLogger().Debugf("stale operation index for %s", operationID)
		case errors.Is(err, model.ErrStorageUnavailable):
			return nil, err
		}
	} else if !errors.Is(err, storage.ErrCacheMiss) {
		utils.GetLogger().Warnf("operation index unavailable, fallback to db: %v", err)
	}

	data, err, _ := r.sfGroup.Do("find_operation_"+operationID, func() (interface{}, error) {
		projects, err := r.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		ref, err := model.LocateOperationInProjects(projects, operationID)
		if err != nil {
			return nil, err
		}

		for _, p := range projects {
			if p.ID == ref.ProjectID {
				r.submitIndexUpdate(&indexUpdateRequest{
					ctx:           context.WithoutCancel(ctx),
					project:       p,
					operationType: indexOperationTypeUpdate,
				})
				break
			}
		}
		return ref, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*model.OperationRef), nil
}

// SaveProject 保存项目: 写库 (重试), 同步失效缓存, 异步更新 operation 索引
func (r *projectRepoImpl) SaveProject(ctx context.Context, project *model.Project) error {
	err := retry.Do(
		func() error {
			_, err := r.projectStorage.Save(ctx, project)
			return err
		},
		retry.Attempts(uint(r.config.SaveProjectRetryCount)),
		retry.Delay(r.config.SaveProjectRetryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return storageErr("failed to save project to db", err)
	}
	r.generation(project.ID).Add(1)

	// 缓存失效必须在返回前完成, 否则后续读取会拿到旧数据
	if err := r.invalidateCache(ctx, project.ID); err != nil {
		return storageErr("failed to invalidate project cache", err)
	}

	r.submitIndexUpdate(&indexUpdateRequest{
		ctx:           context.WithoutCancel(ctx),
		project:       project,
		operationType: indexOperationTypeUpdate,
	})
	return nil
}

// DeleteProject 删除项目, 同时删除缓存和索引
func (r *projectRepoImpl) DeleteProject(ctx context.Context, projectID string) error {
	project, err := r.projectStorage.FindOne(ctx, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
		}
		return storageErr("failed to get project before delete", err)
	}

	if err := r.projectStorage.Delete(ctx, projectID); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
		}
		return storageErr("failed to delete project from db", err)
	}
	r.generation(projectID).Add(1)

	if err := r.invalidateCache(ctx, projectID); err != nil {
		return storageErr("failed to delete project cache", err)
	}

	r.submitIndexUpdate(&indexUpdateRequest{
		ctx:           context.WithoutCancel(ctx),
		operationIDs:  model.OperationIDs(project),
		operationType: indexOperationTypeRemove,
	})
	return nil
}

// RemoveOperationIndex 异步删除索引, 失败时 FindOperation 仍会按过期索引回退
func (r *projectRepoImpl) RemoveOperationIndex(ctx context.Context, operationIDs ...string) {
	if len(operationIDs) == 0 {
		return
	}
	r.submitIndexUpdate(&indexUpdateRequest{
		ctx:           context.WithoutCancel(ctx),
		operationIDs:  operationIDs,
		operationType: indexOperationTypeRemove,
	})
}

func (r *projectRepoImpl) generation(projectID string) *atomic.Uint64 {
	gen, _ := r.generations.LoadOrStore(projectID, new(atomic.Uint64))
	return gen.(*atomic.Uint64)
}

func (r *projectRepoImpl) invalidateCache(ctx context.Context, projectID string) error {
	return retry.Do(
		func() error {
			return r.projectCache.DeleteProject(ctx, projectID)
		},
		retry.Attempts(uint(r.config.RedisCacheRetryCount)),
		retry.Delay(r.config.RedisCacheRetryDelay),
		retry.LastErrorOnly(true),
	)
}

func (r *projectRepoImpl) submitIndexUpdate(req *indexUpdateRequest) {
	if err := r.taskPool.Submit(func() {
		r.handleIndexUpdate(req)
	}); err != nil {
		utils.GetLogger().Errorf("failed to submit index update task: %v", err)
	}
}

// handleIndexUpdate 处理索引更新请求
func (r *projectRepoImpl) handleIndexUpdate(req *indexUpdateRequest) {
	err := retry.Do(
		func() error {
			switch req.operationType {
			case indexOperationTypeUpdate:
				return r.projectCache.SetOperationIndex(req.ctx, req.project)
			case indexOperationTypeRemove:
				return r.projectCache.RemoveOperationIndex(req.ctx, req.operationIDs...)
			default:
				return fmt.Errorf("unknown index operation type: %s", req.operationType)
			}
		},
		retry.Attempts(uint(r.config.IndexUpdateRetryCount)),
		retry.Delay(r.config.IndexUpdateRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		utils.GetLogger().Errorf("failed to update operation index: %v", err)
	}
}

func cloneProject(project *model.Project) (*model.Project, error) {
	data, err := json.Marshal(project)
	if err != nil {
		return nil, fmt.Errorf("failed to copy project: %w", err)
	}
	copied := &model.Project{}
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, fmt.Errorf("failed to copy project: %w", err)
	}
	return copied, nil
}
