package http_mock_app

import (
	"io"
	"net/http"

	"go_virtual_mock/internal/domain/iface"
	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

const (
	mockOperationPath    = "/mock/operations/{operationId}"
	mockOperationSubPath = "/mock/operations/{operationId}/{subpath:*}"
)

var mockMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
	http.MethodPatch, http.MethodHead, http.MethodOptions,
}

// MockController 处理 mock 流量: /mock/operations/{operationId}[/...]
type MockController struct {
	MockService iface.MockExecutionService
	Forwarder   Forwarder
}

func NewMockController(mockService iface.MockExecutionService, forwarder Forwarder) *MockController {
	return &MockController{
		MockService: mockService,
		Forwarder:   forwarder,
	}
}

func (c *MockController) ServeMock(b *rf.Context) {
	defer recoverPanic(b)

	operationID := b.ReadPathParameter("operationId")
	r := b.ReadRequest()
	result := c.MockService.Handle(b.Ctx, operationID, model.NewHTTPRequest(r))

	countRequest(metricMockRequests, map[string]string{
		"operation": operationLabel(operationID, result),
		"result":    string(result.Kind),
	})
	utils.GetLogger().Debugf("mock call %s %s -> %s", r.Method, r.URL.Path, result)

	c.writeResult(b, b.ReadPathParameter("subpath"), result)
}

func (c *MockController) writeResult(b *rf.Context, subpath string, result *model.ExecutionResult) {
	r := b.ReadRequest()
	switch result.Kind {
	case model.ResultRespond, model.ResultEcho:
		for k, v := range result.Headers {
			b.Resp.Header().Set(k, v)
		}
		b.WriteHeader(result.StatusCode)
		if r.Method != http.MethodHead {
			if _, err := b.Resp.Write([]byte(result.Body)); err != nil {
				utils.GetLogger().Warnf("write mock body: %v", err)
			}
		}
	case model.ResultForward:
		c.forward(b, forwardTarget(result.ForwardURL, subpath, r.URL.RawQuery))
	case model.ResultServiceUnavailable:
		writeJSON(b, http.StatusServiceUnavailable, errorBody{
			Error:   "ServiceUnavailable",
			Message: "operation is disabled",
		})
	default:
		message := ""
		if result.Err != nil {
			message = result.Err.Error()
		}
		writeJSON(b, result.StatusCode, errorBody{Error: string(result.ErrorKind), Message: message})
	}
}

func (c *MockController) forward(b *rf.Context, target string) {
	resp, err := c.Forwarder.Forward(b.Ctx, target, b.ReadRequest())
	if err != nil {
		utils.GetLogger().Errorf("forward to %s failed: %v", target, err)
		writeJSON(b, http.StatusBadGateway, errorBody{Error: "ForwardFailed", Message: err.Error()})
		return
	}
	defer resp.Body.Close()

	copyHeader(b.Resp.Header(), resp.Header)
	b.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(b.Resp, resp.Body); err != nil {
		utils.GetLogger().Warnf("copy forwarded body from %s: %v", target, err)
	}
}

func (c *MockController) URLPatterns() []rf.Route {
	routes := make([]rf.Route, 0, 2*len(mockMethods))
	for _, method := range mockMethods {
		for _, path := range []string{mockOperationPath, mockOperationSubPath} {
			routes = append(routes, rf.Route{
				Method:       method,
				Path:         path,
				ResourceFunc: c.ServeMock,
				Returns:      []*rf.Returns{{Code: 200}},
			})
		}
	}
	return routes
}
