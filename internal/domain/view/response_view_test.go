package view

import (
	"context"
	"testing"

	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/internal/infra/repo"
	"go_virtual_mock/internal/infra/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView(t *testing.T, projects ...*model.Project) *ResponseView {
	t.Helper()
	r, err := repo.NewProjectRepoImpl(
		storage.NewMemoryProjectStorage(),
		storage.NewProjectCache(nil, &configs.MockConfig{}),
		&configs.ProjectRepoConfig{RedisCacheRetryCount: 1, SaveProjectRetryCount: 1, IndexUpdateRetryCount: 1, IndexUpdatePoolSize: 1},
	)
	require.NoError(t, err)
	for _, p := range projects {
		require.NoError(t, r.SaveProject(context.Background(), p))
	}
	return NewResponseView(r)
}

func TestOperationView(t *testing.T) {
	project := &model.Project{
		ID: "p1",
		Ports: []model.Port{{
			ID: "port",
			Operations: []model.Operation{{
				ID:               "op",
				Status:           model.OperationStatusMocked,
				ResponseStrategy: model.StrategySequence,
				StatusWeights:    map[model.StatusCategory]int{model.CategorySuccess: 1},
				MockResponses: []model.MockResponse{
					{ID: "r3", Enabled: true, SequencePosition: 3},
					{ID: "off", Enabled: false, SequencePosition: 1},
					{ID: "r2", Enabled: true, SequencePosition: 2},
				},
			}},
		}},
	}
	v := newView(t, project)

	view, err := v.Operation(context.Background(), "op")
	require.NoError(t, err)
	assert.Equal(t, "p1", view.ProjectID)
	assert.Equal(t, "port", view.PortID)
	assert.Equal(t, model.StrategySequence, view.Operation.ResponseStrategy)
	require.Len(t, view.Responses, 2)
	assert.Equal(t, "r2", view.Responses[0].ID)
	assert.Equal(t, "r3", view.Responses[1].ID)
	assert.Len(t, view.Operation.MockResponses, 3)

	// 修改视图不影响下一次读取
	view.Operation.StatusWeights[model.CategorySuccess] = 9
	view.Responses[0].Body = "changed"
	again, err := v.Operation(context.Background(), "op")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Operation.StatusWeights[model.CategorySuccess])
	assert.Empty(t, again.Responses[0].Body)
}

func TestOperationViewNotFound(t *testing.T) {
	v := newView(t)

	_, err := v.Operation(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrOperationNotFound)
	assert.Equal(t, model.ErrorKindOperationNotFound, model.ErrorKindOf(err))
}
