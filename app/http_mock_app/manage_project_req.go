package http_mock_app

import (
	"fmt"

	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/internal/domain/selector"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: invalid request: %w", model.ErrInvalidConfiguration, err)
	}
	return nil
}

type ProjectRequest struct {
	Name        string        `json:"name" validate:"required,min=1,max=100"`
	Description string        `json:"description" validate:"max=1000"`
	Protocol    string        `json:"protocol" validate:"omitempty,oneof=REST SOAP GRPC"`
	Ports       []PortRequest `json:"ports" validate:"omitempty,dive"`
}

func (req *ProjectRequest) Validate() error {
	return validateStruct(req)
}

func (req *ProjectRequest) ConvertToProject() *model.Project {
	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Protocol:    model.Protocol(req.Protocol),
	}
	for i := range req.Ports {
		project.Ports = append(project.Ports, *req.Ports[i].ConvertToPort())
	}
	return project
}

type PortRequest struct {
	Name       string             `json:"name" validate:"required,min=1,max=100"`
	URI        string             `json:"uri" validate:"max=255"`
	Operations []OperationRequest `json:"operations" validate:"omitempty,dive"`
}

func (req *PortRequest) Validate() error {
	return validateStruct(req)
}

func (req *PortRequest) ConvertToPort() *model.Port {
	port := &model.Port{Name: req.Name, URI: req.URI}
	for i := range req.Operations {
		port.Operations = append(port.Operations, *req.Operations[i].ConvertToOperation())
	}
	return port
}

type OperationRequest struct {
	Name              string                `json:"name" validate:"required,min=1,max=100"`
	Method            string                `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Status            string                `json:"status" validate:"omitempty,oneof=MOCKED DISABLED FORWARDED RECORDING ECHO"`
	ResponseStrategy  string                `json:"responseStrategy" validate:"omitempty,oneof=SEQUENCE RANDOM STATUS_SIMULATION JSON_PATH"`
	ForwardedEndpoint string                `json:"forwardedEndpoint" validate:"omitempty,url"`
	StatusWeights     map[string]int        `json:"statusWeights" validate:"omitempty,dive,keys,oneof=2xx 4xx 5xx,endkeys,min=0"`
	MockResponses     []MockResponseRequest `json:"mockResponses" validate:"omitempty,dive"`
}

func (req *OperationRequest) Validate() error {
	return validateStruct(req)
}

func (req *OperationRequest) ConvertToOperation() *model.Operation {
	op := &model.Operation{
		Name:              req.Name,
		Method:            req.Method,
		Status:            model.OperationStatus(req.Status),
		ResponseStrategy:  model.ResponseStrategy(req.ResponseStrategy),
		ForwardedEndpoint: req.ForwardedEndpoint,
	}
	if len(req.StatusWeights) > 0 {
		op.StatusWeights = make(map[model.StatusCategory]int, len(req.StatusWeights))
		for c, w := range req.StatusWeights {
			op.StatusWeights[model.StatusCategory(c)] = w
		}
	}
	for i := range req.MockResponses {
		op.MockResponses = append(op.MockResponses, *req.MockResponses[i].ConvertToMockResponse())
	}
	return op
}

type MockResponseRequest struct {
	Name                string            `json:"name" validate:"required,min=1,max=100"`
	Body                string            `json:"body"`
	StatusCode          int               `json:"statusCode" validate:"omitempty,min=100,max=599"`
	Headers             map[string]string `json:"headers,omitempty"`
	Enabled             *bool             `json:"enabled"` // 默认启用
	SequencePosition    int               `json:"sequencePosition" validate:"min=0"`
	StatusCategory      string            `json:"statusCategory" validate:"omitempty,oneof=2xx 4xx 5xx"`
	JSONPathExpressions []string          `json:"jsonPathExpressions" validate:"omitempty,dive,required"`
}

func (req *MockResponseRequest) Validate() error {
	if err := validateStruct(req); err != nil {
		return err
	}
	for _, expr := range req.JSONPathExpressions {
		if err := selector.ValidateJSONPath(expr); err != nil {
			return err
		}
	}
	return nil
}

func (req *MockResponseRequest) ConvertToMockResponse() *model.MockResponse {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return &model.MockResponse{
		Name:                req.Name,
		Body:                req.Body,
		StatusCode:          req.StatusCode,
		Headers:             req.Headers,
		Enabled:             enabled,
		SequencePosition:    req.SequencePosition,
		StatusCategory:      model.StatusCategory(req.StatusCategory),
		JSONPathExpressions: req.JSONPathExpressions,
	}
}
