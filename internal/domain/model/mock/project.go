package model

import (
	"sort"
	"time"
)

// Project 聚合根: Project -> Port -> Operation -> MockResponse
type Project struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Protocol    Protocol  `gorm:"type:varchar(10);index" json:"protocol"`
	Ports       []Port    `gorm:"type:json;serializer:json" json:"ports"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "mock_projects"
}

// Port is a REST application/resource or a SOAP port.
type Port struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	URI        string      `json:"uri"`
	Operations []Operation `json:"operations"`
}

// Operation is a single mocked endpoint (REST method or SOAP operation).
type Operation struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Method            string                 `json:"method"`
	Status            OperationStatus        `json:"status"`
	ResponseStrategy  ResponseStrategy       `json:"responseStrategy"`
	ForwardedEndpoint string                 `json:"forwardedEndpoint,omitempty"`
	StatusWeights     map[StatusCategory]int `json:"statusWeights,omitempty"` // 状态模拟权重
	MockResponses     []MockResponse         `json:"mockResponses"`
}

// MockResponse is one candidate canned response.
type MockResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Body                string            `json:"body"`
	StatusCode          int               `json:"statusCode"`
	Headers             map[string]string `json:"headers,omitempty"`
	Enabled             bool              `json:"enabled"`
	SequencePosition    int               `json:"sequencePosition"`         // 1-based, 0 表示按配置顺序
	StatusCategory      StatusCategory    `json:"statusCategory,omitempty"` // 覆盖由状态码推导的分类
	JSONPathExpressions []string          `json:"jsonPathExpressions,omitempty"`
}

// Category returns the explicit category override, or the one derived from the status code.
func (r *MockResponse) Category() StatusCategory {
	if r.StatusCategory.IsValid() {
		return r.StatusCategory
	}
	return CategoryOf(r.StatusCode)
}

// OrderedEnabledResponses filters out disabled responses and orders the rest by sequence
// position. Responses without a position keep their configured slot (index + 1).
func OrderedEnabledResponses(responses []MockResponse) []MockResponse {
	type slot struct {
		position int
		response MockResponse
	}
	slots := make([]slot, 0, len(responses))
	for i, r := range responses {
		if !r.Enabled {
			continue
		}
		position := r.SequencePosition
		if position <= 0 {
			position = i + 1
		}
		slots = append(slots, slot{position: position, response: r})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].position < slots[j].position
	})

	ordered := make([]MockResponse, len(slots))
	for i, s := range slots {
		ordered[i] = s.response
	}
	return ordered
}

// OperationRef locates an operation inside its owning project.
type OperationRef struct {
	ProjectID string
	PortID    string
	Operation *Operation
}
