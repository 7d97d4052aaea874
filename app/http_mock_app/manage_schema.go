package http_mock_app

import (
	"net/http"

	"go_virtual_mock/internal/domain/iface"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

const (
	projectsPath      = "/mock/manage/projects"
	projectPath       = projectsPath + "/{projectId}"
	statusCountPath   = projectPath + "/status-count"
	portsPath         = projectPath + "/ports"
	portPath          = portsPath + "/{portId}"
	operationsPath    = portPath + "/operations"
	operationPath     = operationsPath + "/{operationId}"
	mockResponsesPath = operationPath + "/responses"
	mockResponsePath  = mockResponsesPath + "/{responseId}"
)

// ManageController 项目层级的管理接口
type ManageController struct {
	ProjectService iface.ProjectService
}

func NewManageController(projectService iface.ProjectService) *ManageController {
	return &ManageController{ProjectService: projectService}
}

func (c *ManageController) CreateProject(b *rf.Context) {
	var req ProjectRequest
	if !decode(b, &req) {
		return
	}
	project, err := c.ProjectService.CreateProject(b.Ctx, req.ConvertToProject())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusCreated, project)
}

// ListProjects 支持 ?name= 按名称查找
func (c *ManageController) ListProjects(b *rf.Context) {
	if name := b.ReadQueryParameter("name"); name != "" {
		project, err := c.ProjectService.FindProjectByName(b.Ctx, name)
		if err != nil {
			writeError(b, err)
			return
		}
		writeJSON(b, http.StatusOK, project)
		return
	}
	projects, err := c.ProjectService.ListProjects(b.Ctx)
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, projects)
}

func (c *ManageController) GetProject(b *rf.Context) {
	project, err := c.ProjectService.GetProject(b.Ctx, b.ReadPathParameter("projectId"))
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, project)
}

func (c *ManageController) UpdateProject(b *rf.Context) {
	var req ProjectRequest
	if !decode(b, &req) {
		return
	}
	project, err := c.ProjectService.UpdateProject(b.Ctx, b.ReadPathParameter("projectId"), req.ConvertToProject())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, project)
}

func (c *ManageController) DeleteProject(b *rf.Context) {
	if err := c.ProjectService.DeleteProject(b.Ctx, b.ReadPathParameter("projectId")); err != nil {
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusNoContent)
}

func (c *ManageController) StatusCount(b *rf.Context) {
	counts, err := c.ProjectService.OperationStatusCount(b.Ctx, b.ReadPathParameter("projectId"))
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, counts)
}

func (c *ManageController) CreatePort(b *rf.Context) {
	var req PortRequest
	if !decode(b, &req) {
		return
	}
	port, err := c.ProjectService.CreatePort(b.Ctx, b.ReadPathParameter("projectId"), req.ConvertToPort())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusCreated, port)
}

func (c *ManageController) UpdatePort(b *rf.Context) {
	var req PortRequest
	if !decode(b, &req) {
		return
	}
	port, err := c.ProjectService.UpdatePort(b.Ctx, b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), req.ConvertToPort())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, port)
}

func (c *ManageController) DeletePort(b *rf.Context) {
	if err := c.ProjectService.DeletePort(b.Ctx, b.ReadPathParameter("projectId"), b.ReadPathParameter("portId")); err != nil {
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusNoContent)
}

func (c *ManageController) CreateOperation(b *rf.Context) {
	var req OperationRequest
	if !decode(b, &req) {
		return
	}
	op, err := c.ProjectService.CreateOperation(b.Ctx, b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), req.ConvertToOperation())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusCreated, op)
}

func (c *ManageController) UpdateOperation(b *rf.Context) {
	var req OperationRequest
	if !decode(b, &req) {
		return
	}
	op, err := c.ProjectService.UpdateOperation(b.Ctx,
		b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), b.ReadPathParameter("operationId"),
		req.ConvertToOperation())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, op)
}

func (c *ManageController) DeleteOperation(b *rf.Context) {
	err := c.ProjectService.DeleteOperation(b.Ctx,
		b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), b.ReadPathParameter("operationId"))
	if err != nil {
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusNoContent)
}

func (c *ManageController) CreateMockResponse(b *rf.Context) {
	var req MockResponseRequest
	if !decode(b, &req) {
		return
	}
	resp, err := c.ProjectService.CreateMockResponse(b.Ctx,
		b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), b.ReadPathParameter("operationId"),
		req.ConvertToMockResponse())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusCreated, resp)
}

func (c *ManageController) UpdateMockResponse(b *rf.Context) {
	var req MockResponseRequest
	if !decode(b, &req) {
		return
	}
	resp, err := c.ProjectService.UpdateMockResponse(b.Ctx,
		b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), b.ReadPathParameter("operationId"),
		b.ReadPathParameter("responseId"), req.ConvertToMockResponse())
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, resp)
}

func (c *ManageController) DeleteMockResponse(b *rf.Context) {
	err := c.ProjectService.DeleteMockResponse(b.Ctx,
		b.ReadPathParameter("projectId"), b.ReadPathParameter("portId"), b.ReadPathParameter("operationId"),
		b.ReadPathParameter("responseId"))
	if err != nil {
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusNoContent)
}

// manageRoute 包装管理接口: 指标, panic 恢复
func manageRoute(method, path string, fn func(b *rf.Context), code int) rf.Route {
	return rf.Route{
		Method: method,
		Path:   path,
		ResourceFunc: func(b *rf.Context) {
			defer recoverPanic(b)
			countRequest(metricManageRequests, map[string]string{
				"method":   method,
				"endpoint": path,
			})
			fn(b)
		},
		Returns: []*rf.Returns{{Code: code}},
	}
}

func (c *ManageController) URLPatterns() []rf.Route {
	return []rf.Route{
		manageRoute(http.MethodPost, projectsPath, c.CreateProject, http.StatusCreated),
		manageRoute(http.MethodGet, projectsPath, c.ListProjects, http.StatusOK),
		manageRoute(http.MethodGet, projectPath, c.GetProject, http.StatusOK),
		manageRoute(http.MethodPut, projectPath, c.UpdateProject, http.StatusOK),
		manageRoute(http.MethodDelete, projectPath, c.DeleteProject, http.StatusNoContent),
		manageRoute(http.MethodGet, statusCountPath, c.StatusCount, http.StatusOK),
		manageRoute(http.MethodPost, portsPath, c.CreatePort, http.StatusCreated),
		manageRoute(http.MethodPut, portPath, c.UpdatePort, http.StatusOK),
		manageRoute(http.MethodDelete, portPath, c.DeletePort, http.StatusNoContent),
		manageRoute(http.MethodPost, operationsPath, c.CreateOperation, http.StatusCreated),
		manageRoute(http.MethodPut, operationPath, c.UpdateOperation, http.StatusOK),
		manageRoute(http.MethodDelete, operationPath, c.DeleteOperation, http.StatusNoContent),
		manageRoute(http.MethodPost, mockResponsesPath, c.CreateMockResponse, http.StatusCreated),
		manageRoute(http.MethodPut, mockResponsePath, c.UpdateMockResponse, http.StatusOK),
		manageRoute(http.MethodDelete, mockResponsePath, c.DeleteMockResponse, http.StatusNoContent),
	}
}
