package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go_virtual_mock/internal/domain/iface"
	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/internal/domain/selector"
	"go_virtual_mock/internal/infra/repo"
	"go_virtual_mock/utils"

	"github.com/google/uuid"
)

// ProjectManageService 管理 Project -> Port -> Operation -> MockResponse 层级
//
// 写操作是 读取-修改-保存 整个项目, 由 mu 串行化
type ProjectManageService struct {
	projectRepo repo.ProjectRepositoryIface
	selector    *selector.Selector
	mu          sync.Mutex
	now         func() time.Time
}

var _ iface.ProjectService = (*ProjectManageService)(nil)

func NewProjectManageService(projectRepo repo.ProjectRepositoryIface, s *selector.Selector) *ProjectManageService {
	return &ProjectManageService{
		projectRepo: projectRepo,
		selector:    s,
		now:         time.Now,
	}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// CreateProject 创建项目, 名称不区分大小写唯一
func (s *ProjectManageService) CreateProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	if err := s.validateProject(project); err != nil {
		return nil, fmt.Errorf("project validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNameAvailable(ctx, project.Name, ""); err != nil {
		return nil, err
	}

	if project.Protocol == "" {
		project.Protocol = model.ProtocolREST
	}
	now := s.now().UTC()
	project.ID = uuid.NewString()
	project.CreatedAt = now
	project.UpdatedAt = now
	for i := range project.Ports {
		if err := s.preparePort(&project.Ports[i]); err != nil {
			return nil, fmt.Errorf("project validation failed: %w", err)
		}
	}

	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project to repository: %w", err)
	}
	utils.GetLogger().Infof("project created: %s (%s)", project.Name, project.ID)
	return project, nil
}

// UpdateProject 只更新项目元数据 (名称, 描述), 端口和操作保持不变
func (s *ProjectManageService) UpdateProject(ctx context.Context, projectID string, update *model.Project) (*model.Project, error) {
	if err := s.validateProject(update); err != nil {
		return nil, fmt.Errorf("project validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameAvailable(ctx, update.Name, projectID); err != nil {
		return nil, err
	}

	project.Name = update.Name
	project.Description = update.Description
	if update.Protocol != "" {
		project.Protocol = update.Protocol
	}
	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject 删除项目并重置其所有 operation 的序列游标
func (s *ProjectManageService) DeleteProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.projectRepo.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	for _, id := range model.OperationIDs(project) {
		s.selector.ResetSequence(id)
	}
	utils.GetLogger().Infof("project deleted: %s", projectID)
	return nil
}

func (s *ProjectManageService) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	return s.projectRepo.FindByID(ctx, projectID)
}

// FindProjectByName 不区分大小写
func (s *ProjectManageService) FindProjectByName(ctx context.Context, name string) (*model.Project, error) {
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	project := model.FindProjectByName(projects, name)
	if project == nil {
		return nil, fmt.Errorf("%w: name %q", model.ErrProjectNotFound, name)
	}
	return project, nil
}

func (s *ProjectManageService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return s.projectRepo.FindAll(ctx)
}

func (s *ProjectManageService) CreatePort(ctx context.Context, projectID string, port *model.Port) (*model.Port, error) {
	if strings.TrimSpace(port.Name) == "" {
		return nil, invalidf("port name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.preparePort(port); err != nil {
		return nil, err
	}
	project.Ports = append(project.Ports, *port)
	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	return port, nil
}

// UpdatePort 只更新名称和 URI, operation 保持不变
func (s *ProjectManageService) UpdatePort(ctx context.Context, projectID, portID string, update *model.Port) (*model.Port, error) {
	if strings.TrimSpace(update.Name) == "" {
		return nil, invalidf("port name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	port, err := model.FindPort(project, portID)
	if err != nil {
		return nil, err
	}
	port.Name = strings.TrimSpace(update.Name)
	port.URI = update.URI

	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	return port, nil
}

func (s *ProjectManageService) DeletePort(ctx context.Context, projectID, portID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	port, err := model.FindPort(project, portID)
	if err != nil {
		return err
	}
	removed := make([]string, 0, len(port.Operations))
	for _, op := range port.Operations {
		removed = append(removed, op.ID)
	}

	kept := project.Ports[:0]
	for _, p := range project.Ports {
		if p.ID != portID {
			kept = append(kept, p)
		}
	}
	project.Ports = kept

	if err := s.save(ctx, project); err != nil {
		return err
	}
	s.forgetOperations(ctx, removed...)
	utils.GetLogger().Infof("port deleted: %s (%d operations)", portID, len(removed))
	return nil
}

// CreateOperation 创建操作, 默认状态 MOCKED, 默认策略 RANDOM
func (s *ProjectManageService) CreateOperation(ctx context.Context, projectID, portID string, op *model.Operation) (*model.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	port, err := model.FindPort(project, portID)
	if err != nil {
		return nil, err
	}
	if err := s.prepareOperation(op); err != nil {
		return nil, err
	}
	port.Operations = append(port.Operations, *op)
	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	return op, nil
}

// UpdateOperation 更新操作元数据, mock 响应保持不变, 序列游标重置
func (s *ProjectManageService) UpdateOperation(ctx context.Context, projectID, portID, operationID string, update *model.Operation) (*model.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	op, err := model.FindOperation(project, portID, operationID)
	if err != nil {
		return nil, err
	}

	updated := *update
	updated.ID = op.ID
	updated.MockResponses = op.MockResponses
	if err := s.prepareOperation(&updated); err != nil {
		return nil, err
	}
	*op = updated

	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	s.selector.ResetSequence(operationID)
	return op, nil
}

func (s *ProjectManageService) DeleteOperation(ctx context.Context, projectID, portID, operationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if _, err := model.FindOperation(project, portID, operationID); err != nil {
		return err
	}
	port, _ := model.FindPort(project, portID)

	kept := port.Operations[:0]
	for _, op := range port.Operations {
		if op.ID != operationID {
			kept = append(kept, op)
		}
	}
	port.Operations = kept

	if err := s.save(ctx, project); err != nil {
		return err
	}
	s.forgetOperations(ctx, operationID)
	utils.GetLogger().Infof("operation deleted: %s", operationID)
	return nil
}

// forgetOperations 删除 operation 后清理索引和序列游标
func (s *ProjectManageService) forgetOperations(ctx context.Context, operationIDs ...string) {
	s.projectRepo.RemoveOperationIndex(ctx, operationIDs...)
	for _, id := range operationIDs {
		s.selector.ResetSequence(id)
	}
}

// CreateMockResponse 未指定序列位置时追加到末尾
func (s *ProjectManageService) CreateMockResponse(ctx context.Context, projectID, portID, operationID string, resp *model.MockResponse) (*model.MockResponse, error) {
	if err := validateMockResponse(resp); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	op, err := model.FindOperation(project, portID, operationID)
	if err != nil {
		return nil, err
	}

	resp.ID = uuid.NewString()
	if resp.SequencePosition <= 0 {
		resp.SequencePosition = len(op.MockResponses) + 1
	}
	op.MockResponses = append(op.MockResponses, *resp)

	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	s.selector.ResetSequence(operationID)
	return resp, nil
}

func (s *ProjectManageService) UpdateMockResponse(ctx context.Context, projectID, portID, operationID, responseID string, update *model.MockResponse) (*model.MockResponse, error) {
	if err := validateMockResponse(update); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	op, err := model.FindOperation(project, portID, operationID)
	if err != nil {
		return nil, err
	}
	resp, err := model.FindMockResponse(op, responseID)
	if err != nil {
		return nil, err
	}

	position := resp.SequencePosition
	*resp = *update
	resp.ID = responseID
	if resp.SequencePosition <= 0 {
		resp.SequencePosition = position
	}

	if err := s.save(ctx, project); err != nil {
		return nil, err
	}
	s.selector.ResetSequence(operationID)
	return resp, nil
}

func (s *ProjectManageService) DeleteMockResponse(ctx context.Context, projectID, portID, operationID, responseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	op, err := model.FindOperation(project, portID, operationID)
	if err != nil {
		return err
	}
	if _, err := model.FindMockResponse(op, responseID); err != nil {
		return err
	}

	kept := op.MockResponses[:0]
	for _, r := range op.MockResponses {
		if r.ID != responseID {
			kept = append(kept, r)
		}
	}
	op.MockResponses = kept

	if err := s.save(ctx, project); err != nil {
		return err
	}
	s.selector.ResetSequence(operationID)
	return nil
}

func (s *ProjectManageService) OperationStatusCount(ctx context.Context, projectID string) (map[model.OperationStatus]int, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return model.CountOperationStatuses(project), nil
}

func (s *ProjectManageService) save(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = s.now().UTC()
	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		return fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return nil
}

// checkNameAvailable 名称被其他项目占用时返回 ErrProjectNameTaken
func (s *ProjectManageService) checkNameAvailable(ctx context.Context, name, selfID string) error {
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	if existing := model.FindProjectByName(projects, name); existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: %s", model.ErrProjectNameTaken, name)
	}
	return nil
}

func (s *ProjectManageService) validateProject(project *model.Project) error {
	if project == nil {
		return invalidf("project is missing")
	}
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return invalidf("project name is required")
	}
	if project.Protocol != "" && !project.Protocol.IsValid() {
		return invalidf("unknown protocol %q", project.Protocol)
	}
	return nil
}

func (s *ProjectManageService) preparePort(port *model.Port) error {
	port.ID = uuid.NewString()
	for i := range port.Operations {
		if err := s.prepareOperation(&port.Operations[i]); err != nil {
			return err
		}
	}
	return nil
}

// prepareOperation 填充默认值并校验, 新建的操作和响应分配 id
func (s *ProjectManageService) prepareOperation(op *model.Operation) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Status == "" {
		op.Status = model.OperationStatusMocked
	}
	if op.ResponseStrategy == "" {
		op.ResponseStrategy = model.StrategyRandom
	}
	if !op.Status.IsValid() {
		return invalidf("unknown operation status %q", op.Status)
	}
	if !op.ResponseStrategy.IsValid() {
		return invalidf("unknown response strategy %q", op.ResponseStrategy)
	}
	if op.Status == model.OperationStatusForwarded && op.ForwardedEndpoint == "" {
		return invalidf("forwarded operation %s requires an endpoint", op.ID)
	}
	for c, w := range op.StatusWeights {
		if !c.IsValid() || w < 0 {
			return invalidf("invalid status weight %s=%d", c, w)
		}
	}
	for i := range op.MockResponses {
		r := &op.MockResponses[i]
		if err := validateMockResponse(r); err != nil {
			return err
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.SequencePosition <= 0 {
			r.SequencePosition = i + 1
		}
	}
	return nil
}

func validateMockResponse(resp *model.MockResponse) error {
	if resp == nil {
		return invalidf("mock response is missing")
	}
	if resp.StatusCode != 0 && (resp.StatusCode < 100 || resp.StatusCode > 599) {
		return invalidf("invalid status code %d", resp.StatusCode)
	}
	if resp.StatusCategory != "" && !resp.StatusCategory.IsValid() {
		return invalidf("invalid status category %q", resp.StatusCategory)
	}
	for _, expr := range resp.JSONPathExpressions {
		if err := selector.ValidateJSONPath(expr); err != nil {
			return err
		}
	}
	return nil
}

// IsNotFound 判断管理操作的错误是否为资源不存在
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrProjectNotFound) ||
		errors.Is(err, model.ErrPortNotFound) ||
		errors.Is(err, model.ErrOperationNotFound) ||
		errors.Is(err, model.ErrMockResponseNotFound) ||
		errors.Is(err, model.ErrEventNotFound)
}
