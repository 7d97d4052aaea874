package model

import "time"

// RequestSnapshot 入站请求快照
type RequestSnapshot struct {
	Protocol string            `json:"protocol"`
	Method   string            `json:"method"`
	URI      string            `json:"uri"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     string            `json:"body,omitempty"`
}

// ResponseSnapshot 实际返回给调用方的结果快照
type ResponseSnapshot struct {
	Kind           ResultKind        `json:"kind"`
	StatusCode     int               `json:"statusCode,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           string            `json:"body,omitempty"`
	MockResponseID string            `json:"mockResponseId,omitempty"`
	ForwardURL     string            `json:"forwardUrl,omitempty"`
	ErrorKind      ErrorKind         `json:"errorKind,omitempty"`
	ErrorMessage   string            `json:"errorMessage,omitempty"`
}

// Event is an immutable record of one served request.
// IDs are time-ordered, so equal CreatedAt values still sort by insertion.
type Event struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID   string           `gorm:"type:varchar(36);index" json:"projectId,omitempty"`
	PortID      string           `gorm:"type:varchar(36)" json:"portId,omitempty"`
	OperationID string           `gorm:"type:varchar(64);index:idx_event_operation_created,priority:1" json:"operationId"`
	Request     RequestSnapshot  `gorm:"type:json;serializer:json" json:"request"`
	Response    ResponseSnapshot `gorm:"type:json;serializer:json" json:"response"`
	CreatedAt   time.Time        `gorm:"type:datetime(6);index;index:idx_event_operation_created,priority:2" json:"createdAt"`
}

func (Event) TableName() string {
	return "mock_events"
}

// UnknownOperationID 查找 operation 失败的调用都记在这个 id 下, 共用一个淘汰范围
const UnknownOperationID = "_unknown"

// EventFilter 事件查询过滤器
type EventFilter struct {
	OperationID string // 为空表示全部
	Limit       int    // <= 0 表示不限制
}
