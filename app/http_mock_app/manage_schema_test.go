package http_mock_app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	model "go_virtual_mock/internal/domain/model/mock"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(fn func(*rf.Context), method, target, body string, p pathParams) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	b, rec := newContext(req, p)
	fn(b)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestManageProjectLifecycle(t *testing.T) {
	f := newAppFixture(t)
	m := f.app.Manage

	rec := serve(m.CreateProject, http.MethodPost, projectsPath, `{"name":"shop","description":"d"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decodeInto[model.Project](t, rec)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, model.ProtocolREST, project.Protocol)
	ids := pathParams{"projectId": project.ID}

	rec = serve(m.CreateProject, http.MethodPost, projectsPath, `{"name":"SHOP"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(m.GetProject, http.MethodGet, "/", "", ids)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(m.ListProjects, http.MethodGet, projectsPath+"?name=Shop", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, project.ID, decodeInto[model.Project](t, rec).ID)

	rec = serve(m.UpdateProject, http.MethodPut, "/", `{"name":"shop-v2"}`, ids)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shop-v2", decodeInto[model.Project](t, rec).Name)

	rec = serve(m.ListProjects, http.MethodGet, projectsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeInto[[]model.Project](t, rec), 1)

	rec = serve(m.DeleteProject, http.MethodDelete, "/", "", ids)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(m.GetProject, http.MethodGet, "/", "", ids)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", decodeError(t, rec).Error)
}

func TestManageHierarchyThenMock(t *testing.T) {
	f := newAppFixture(t)
	m := f.app.Manage

	rec := serve(m.CreateProject, http.MethodPost, projectsPath, `{"name":"shop"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	projectID := decodeInto[model.Project](t, rec).ID

	rec = serve(m.CreatePort, http.MethodPost, "/", `{"name":"orders","uri":"/orders"}`, pathParams{"projectId": projectID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	portID := decodeInto[model.Port](t, rec).ID

	p := pathParams{"projectId": projectID, "portId": portID}
	rec = serve(m.CreateOperation, http.MethodPost, "/", `{"name":"get","method":"GET","responseStrategy":"SEQUENCE"}`, p)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	op := decodeInto[model.Operation](t, rec)
	assert.Equal(t, model.OperationStatusMocked, op.Status)
	p["operationId"] = op.ID

	for _, body := range []string{`{"name":"first","body":"1"}`, `{"name":"second","body":"2","statusCode":404}`} {
		rec = serve(m.CreateMockResponse, http.MethodPost, "/", body, p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.True(t, decodeInto[model.MockResponse](t, rec).Enabled)
	}

	var got []string
	for i := 0; i < 3; i++ {
		rec = f.call(http.MethodGet, "/mock/operations/"+op.ID, "", pathParams{"operationId": op.ID})
		got = append(got, rec.Body.String())
	}
	assert.Equal(t, []string{"1", "2", "1"}, got)

	rec = serve(m.StatusCount, http.MethodGet, "/", "", pathParams{"projectId": projectID})
	require.Equal(t, http.StatusOK, rec.Code)
	counts := decodeInto[map[model.OperationStatus]int](t, rec)
	assert.Equal(t, 1, counts[model.OperationStatusMocked])
	assert.Equal(t, 0, counts[model.OperationStatusEcho])

	rec = serve(m.UpdateOperation, http.MethodPut, "/", `{"name":"get","status":"DISABLED"}`, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.call(http.MethodGet, "/mock/operations/"+op.ID, "", pathParams{"operationId": op.ID})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestManageMockResponseUpdateDelete(t *testing.T) {
	f := newAppFixture(t)
	f.saveOperations(t, model.Operation{
		ID:            "op",
		Status:        model.OperationStatusMocked,
		MockResponses: []model.MockResponse{{ID: "r1", Enabled: true, SequencePosition: 1}},
	})
	m := f.app.Manage
	p := pathParams{"projectId": "project", "portId": "port", "operationId": "op", "responseId": "r1"}

	rec := serve(m.UpdateMockResponse, http.MethodPut, "/", `{"name":"r1","body":"updated","enabled":false}`, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeInto[model.MockResponse](t, rec).Enabled)

	rec = serve(m.DeleteMockResponse, http.MethodDelete, "/", "", p)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(m.DeleteMockResponse, http.MethodDelete, "/", "", p)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManagePortAndOperationRoutes(t *testing.T) {
	f := newAppFixture(t)
	m := f.app.Manage

	rec := serve(m.CreateProject, http.MethodPost, projectsPath, `{"name":"shop"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	projectID := decodeInto[model.Project](t, rec).ID

	rec = serve(m.CreatePort, http.MethodPost, "/", `{"name":"orders","uri":"/orders"}`, pathParams{"projectId": projectID})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := pathParams{"projectId": projectID, "portId": decodeInto[model.Port](t, rec).ID}

	rec = serve(m.UpdatePort, http.MethodPut, "/", `{"name":"orders-v2","uri":"/v2/orders"}`, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/v2/orders", decodeInto[model.Port](t, rec).URI)

	rec = serve(m.CreateOperation, http.MethodPost, "/", `{"name":"get","status":"ECHO"}`, p)
	require.Equal(t, http.StatusCreated, rec.Code)
	opID := decodeInto[model.Operation](t, rec).ID
	p["operationId"] = opID

	rec = f.call(http.MethodPost, "/mock/operations/"+opID, "ping", pathParams{"operationId": opID})
	assert.Equal(t, "ping", rec.Body.String())

	rec = serve(m.DeleteOperation, http.MethodDelete, "/", "", p)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(m.DeleteOperation, http.MethodDelete, "/", "", p)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.call(http.MethodPost, "/mock/operations/"+opID, "ping", pathParams{"operationId": opID})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(model.ErrorKindOperationNotFound), decodeError(t, rec).Error)

	rec = serve(m.DeletePort, http.MethodDelete, "/", "", p)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(m.UpdatePort, http.MethodPut, "/", `{"name":"x"}`, p)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManageRejectsInvalidRequests(t *testing.T) {
	f := newAppFixture(t)
	m := f.app.Manage

	tests := []struct {
		name string
		fn   func(*rf.Context)
		body string
	}{
		{"malformed json", m.CreateProject, `{"name":`},
		{"missing name", m.CreateProject, `{"description":"x"}`},
		{"bad protocol", m.CreateProject, `{"name":"p","protocol":"FTP"}`},
		{"bad status", m.CreateOperation, `{"name":"op","status":"PAUSED"}`},
		{"bad strategy", m.CreateOperation, `{"name":"op","responseStrategy":"ROUND_ROBIN"}`},
		{"bad weight key", m.CreateOperation, `{"name":"op","statusWeights":{"3xx":1}}`},
		{"negative weight", m.CreateOperation, `{"name":"op","statusWeights":{"2xx":-1}}`},
		{"bad endpoint", m.CreateOperation, `{"name":"op","forwardedEndpoint":"nope"}`},
		{"bad status code", m.CreateMockResponse, `{"name":"r","statusCode":99}`},
		{"bad category", m.CreateMockResponse, `{"name":"r","statusCategory":"1xx"}`},
		{"empty json path", m.CreateMockResponse, `{"name":"r","jsonPathExpressions":[""]}`},
		{"unparsable json path", m.CreateMockResponse, `{"name":"r","jsonPathExpressions":["$.["]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.fn, http.MethodPost, "/", tt.body, pathParams{})
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, string(model.ErrorKindInvalidConfiguration), decodeError(t, rec).Error)
		})
	}
}

func TestManageForwardedNeedsEndpoint(t *testing.T) {
	f := newAppFixture(t)
	f.saveOperations(t)

	rec := serve(f.app.Manage.CreateOperation, http.MethodPost, "/", `{"name":"op","status":"FORWARDED"}`,
		pathParams{"projectId": "project", "portId": "port"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventRoutes(t *testing.T) {
	f := newAppFixture(t)
	f.saveOperations(t,
		model.Operation{ID: "a", Status: model.OperationStatusEcho},
		model.Operation{ID: "b", Status: model.OperationStatusEcho},
	)
	for _, id := range []string{"a", "a", "b"} {
		f.call(http.MethodPost, "/mock/operations/"+id, "x", pathParams{"operationId": id})
	}
	e := f.app.Events

	rec := serve(e.ListEvents, http.MethodGet, eventsPath+"?operationId=a&limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeInto[[]model.Event](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].OperationID)

	rec = serve(e.GetEvent, http.MethodGet, "/", "", pathParams{"eventId": events[0].ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, events[0].ID, decodeInto[model.Event](t, rec).ID)

	rec = serve(e.DeleteEvent, http.MethodDelete, "/", "", pathParams{"eventId": events[0].ID})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(e.GetEvent, http.MethodGet, "/", "", pathParams{"eventId": events[0].ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e.ListEvents, http.MethodGet, eventsPath+"?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e.ClearEvents, http.MethodDelete, eventsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeInto[map[string]int64](t, rec)["removed"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{model.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.Join(model.ErrProjectNotFound, model.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{model.ErrProjectNameTaken, http.StatusConflict},
		{model.ErrPortNotFound, http.StatusNotFound},
		{model.ErrInvalidConfiguration, http.StatusBadRequest},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestManageURLPatterns(t *testing.T) {
	app := newAppFixture(t).app
	seen := make(map[string]bool)
	for _, r := range append(app.Manage.URLPatterns(), app.Events.URLPatterns()...) {
		key := r.Method + " " + r.Path
		assert.False(t, seen[key], "duplicate route %s", key)
		seen[key] = true
		assert.NotNil(t, r.ResourceFunc)
	}
	assert.Len(t, app.Schemas(), 3)
}
