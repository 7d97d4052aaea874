package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/internal/infra/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRepoConfig = &configs.ProjectRepoConfig{
	RedisCacheRetryCount:  2,
	SaveProjectRetryCount: 3,
	IndexUpdateRetryCount: 2,
	IndexUpdatePoolSize:   4,
}

func newRedisCache(t *testing.T) storage.ProjectCacheIface {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewProjectCache(client, &configs.MockConfig{})
}

func newRepo(t *testing.T, store storage.ProjectStorageIface, cache storage.ProjectCacheIface) ProjectRepositoryIface {
	t.Helper()
	r, err := NewProjectRepoImpl(store, cache, testRepoConfig)
	require.NoError(t, err)
	return r
}

func testProject(id string) *model.Project {
	return &model.Project{
		ID:       id,
		Name:     "project " + id,
		Protocol: model.ProtocolREST,
		Ports: []model.Port{
			{
				ID: id + "-port",
				Operations: []model.Operation{
					{ID: id + "-op", Status: model.OperationStatusMocked, ResponseStrategy: model.StrategySequence},
				},
			},
		},
	}
}

func TestProjectRepoSaveAndFind(t *testing.T) {
	ctx := context.Background()
	cache := newRedisCache(t)
	r := newRepo(t, storage.NewMemoryProjectStorage(), cache)

	require.NoError(t, r.SaveProject(ctx, testProject("p1")))

	found, err := r.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "project p1", found.Name)

	// 第一次读取后回填缓存
	cached, err := cache.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "project p1", cached.Name)

	// 保存后缓存失效, 读取到新数据
	updated := testProject("p1")
	updated.Name = "renamed"
	require.NoError(t, r.SaveProject(ctx, updated))
	found, err = r.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Name)

	_, err = r.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrProjectNotFound)

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProjectRepoFindOperation(t *testing.T) {
	ctx := context.Background()
	cache := newRedisCache(t)
	r := newRepo(t, storage.NewMemoryProjectStorage(), cache)

	require.NoError(t, r.SaveProject(ctx, testProject("p1")))
	require.NoError(t, r.SaveProject(ctx, testProject("p2")))

	ref, err := r.FindOperation(ctx, "p2-op")
	require.NoError(t, err)
	assert.Equal(t, "p2", ref.ProjectID)
	assert.Equal(t, "p2-port", ref.PortID)
	assert.Equal(t, model.StrategySequence, ref.Operation.ResponseStrategy)

	// 索引异步写入
	assert.Eventually(t, func() bool {
		projectID, err := cache.GetOperationIndex(ctx, "p2-op")
		return err == nil && projectID == "p2"
	}, time.Second, 10*time.Millisecond)

	ref, err = r.FindOperation(ctx, "p2-op")
	require.NoError(t, err)
	assert.Equal(t, "p2", ref.ProjectID)

	_, err = r.FindOperation(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrOperationNotFound)
}

func TestProjectRepoFindOperationStaleIndex(t *testing.T) {
	ctx := context.Background()
	cache := newRedisCache(t)
	r := newRepo(t, storage.NewMemoryProjectStorage(), cache)

	require.NoError(t, r.SaveProject(ctx, testProject("p1")))
	moved := testProject("p2")
	moved.Ports[0].Operations[0].ID = "p1-op"
	// 索引仍指向 p1, 但 operation 已不在 p1 中
	require.NoError(t, cache.SetOperationIndex(ctx, testProject("p1")))
	p1 := testProject("p1")
	p1.Ports[0].Operations = nil
	require.NoError(t, r.SaveProject(ctx, p1))
	require.NoError(t, r.SaveProject(ctx, moved))

	ref, err := r.FindOperation(ctx, "p1-op")
	require.NoError(t, err)
	assert.Equal(t, "p2", ref.ProjectID)
}

func TestProjectRepoDelete(t *testing.T) {
	ctx := context.Background()
	cache := newRedisCache(t)
	r := newRepo(t, storage.NewMemoryProjectStorage(), cache)

	require.NoError(t, r.SaveProject(ctx, testProject("p1")))
	_, err := r.FindOperation(ctx, "p1-op")
	require.NoError(t, err)

	require.NoError(t, r.DeleteProject(ctx, "p1"))
	assert.ErrorIs(t, r.DeleteProject(ctx, "p1"), model.ErrProjectNotFound)

	_, err = r.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
	_, err = r.FindOperation(ctx, "p1-op")
	assert.ErrorIs(t, err, model.ErrOperationNotFound)

	assert.Eventually(t, func() bool {
		_, err := cache.GetOperationIndex(ctx, "p1-op")
		return errors.Is(err, storage.ErrCacheMiss)
	}, time.Second, 10*time.Millisecond)
}

func TestProjectRepoRemoveOperationIndex(t *testing.T) {
	ctx := context.Background()
	cache := newRedisCache(t)
	r := newRepo(t, storage.NewMemoryProjectStorage(), cache)

	project := testProject("p1")
	project.Ports[0].Operations = append(project.Ports[0].Operations, model.Operation{ID: "p1-op2", Status: model.OperationStatusMocked})
	require.NoError(t, r.SaveProject(ctx, project))
	assert.Eventually(t, func() bool {
		_, err := cache.GetOperationIndex(ctx, "p1-op2")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	project.Ports[0].Operations = project.Ports[0].Operations[:1]
	require.NoError(t, r.SaveProject(ctx, project))
	r.RemoveOperationIndex(ctx, "p1-op2")
	r.RemoveOperationIndex(ctx)

	assert.Eventually(t, func() bool {
		_, err := cache.GetOperationIndex(ctx, "p1-op2")
		return errors.Is(err, storage.ErrCacheMiss)
	}, time.Second, 10*time.Millisecond)
	projectID, err := cache.GetOperationIndex(ctx, "p1-op")
	require.NoError(t, err)
	assert.Equal(t, "p1", projectID)

	_, err = r.FindOperation(ctx, "p1-op2")
	assert.ErrorIs(t, err, model.ErrOperationNotFound)
}

func TestProjectRepoWithoutRedis(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, storage.NewMemoryProjectStorage(), storage.NewProjectCache(nil, &configs.MockConfig{}))

	require.NoError(t, r.SaveProject(ctx, testProject("p1")))
	ref, err := r.FindOperation(ctx, "p1-op")
	require.NoError(t, err)
	assert.Equal(t, "p1", ref.ProjectID)
}

// flakyStorage 前 failures 次保存失败
type flakyStorage struct {
	storage.ProjectStorageIface
	mu       sync.Mutex
	failures int
	saves    int
	down     bool
}

var errDBDown = errors.New("connection refused")

func (f *flakyStorage) Save(ctx context.Context, p *model.Project) (*model.Project, error) {
	f.mu.Lock()
	f.saves++
	fail := f.saves <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, errDBDown
	}
	return f.ProjectStorageIface.Save(ctx, p)
}

func (f *flakyStorage) FindAll(ctx context.Context) ([]*model.Project, error) {
	if f.down {
		return nil, errDBDown
	}
	return f.ProjectStorageIface.FindAll(ctx)
}

func (f *flakyStorage) FindOne(ctx context.Context, id string) (*model.Project, error) {
	if f.down {
		return nil, errDBDown
	}
	return f.ProjectStorageIface.FindOne(ctx, id)
}

func TestProjectRepoSaveRetries(t *testing.T) {
	ctx := context.Background()
	store := &flakyStorage{ProjectStorageIface: storage.NewMemoryProjectStorage(), failures: 2}
	r := newRepo(t, store, storage.NewProjectCache(nil, &configs.MockConfig{}))

	require.NoError(t, r.SaveProject(ctx, testProject("p1")))
	assert.Equal(t, 3, store.saves)

	store.failures = 10
	err := r.SaveProject(ctx, testProject("p2"))
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.ErrorIs(t, err, errDBDown)
}

func TestProjectRepoStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	store := &flakyStorage{ProjectStorageIface: storage.NewMemoryProjectStorage(), down: true}
	r := newRepo(t, store, storage.NewProjectCache(nil, &configs.MockConfig{}))

	_, err := r.FindOperation(ctx, "p1-op")
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.Equal(t, model.ErrorKindStorageUnavailable, model.ErrorKindOf(err))

	_, err = r.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)

	assert.ErrorIs(t, r.DeleteProject(ctx, "p1"), model.ErrStorageUnavailable)
}

// pausingStorage 第一次 FindOne 读完数据后停住, 直到 resume 被关闭
type pausingStorage struct {
	storage.ProjectStorageIface
	once   sync.Once
	loaded chan struct{}
	resume chan struct{}
}

func (p *pausingStorage) FindOne(ctx context.Context, id string) (*model.Project, error) {
	project, err := p.ProjectStorageIface.FindOne(ctx, id)
	p.once.Do(func() {
		close(p.loaded)
		<-p.resume
	})
	return project, err
}

func TestProjectRepoSlowReadDoesNotCacheStaleProject(t *testing.T) {
	ctx := context.Background()
	cache := newRedisCache(t)
	store := &pausingStorage{
		ProjectStorageIface: storage.NewMemoryProjectStorage(),
		loaded:              make(chan struct{}),
		resume:              make(chan struct{}),
	}
	r := newRepo(t, store, cache)
	require.NoError(t, r.SaveProject(ctx, testProject("p1")))

	done := make(chan *model.Project)
	go func() {
		p, err := r.FindByID(ctx, "p1")
		assert.NoError(t, err)
		done <- p
	}()
	<-store.loaded

	disabled := testProject("p1")
	disabled.Ports[0].Operations[0].Status = model.OperationStatusDisabled
	require.NoError(t, r.SaveProject(ctx, disabled))

	close(store.resume)
	stale := <-done
	assert.Equal(t, model.OperationStatusMocked, stale.Ports[0].Operations[0].Status)

	found, err := r.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.OperationStatusDisabled, found.Ports[0].Operations[0].Status)

	ref, err := r.FindOperation(ctx, "p1-op")
	require.NoError(t, err)
	assert.Equal(t, model.OperationStatusDisabled, ref.Operation.Status)
}
