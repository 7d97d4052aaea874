package model

// Protocol 项目协议类型
type Protocol string

const (
	ProtocolREST Protocol = "REST"
	ProtocolSOAP Protocol = "SOAP"
	ProtocolGRPC Protocol = "GRPC"
)

func (p Protocol) IsValid() bool {
	switch p {
	case ProtocolREST, ProtocolSOAP, ProtocolGRPC:
		return true
	default:
		return false
	}
}

// OperationStatus represents how an operation answers inbound traffic
type OperationStatus string

const (
	OperationStatusMocked    OperationStatus = "MOCKED"
	OperationStatusDisabled  OperationStatus = "DISABLED"
	OperationStatusForwarded OperationStatus = "FORWARDED"
	OperationStatusRecording OperationStatus = "RECORDING"
	OperationStatusEcho      OperationStatus = "ECHO"
)

// OperationStatuses returns every known status in a stable order.
func OperationStatuses() []OperationStatus {
	return []OperationStatus{
		OperationStatusMocked,
		OperationStatusDisabled,
		OperationStatusForwarded,
		OperationStatusRecording,
		OperationStatusEcho,
	}
}

func (s OperationStatus) IsValid() bool {
	switch s {
	case OperationStatusMocked, OperationStatusDisabled, OperationStatusForwarded,
		OperationStatusRecording, OperationStatusEcho:
		return true
	default:
		return false
	}
}

func (s OperationStatus) String() string {
	return string(s)
}

// ResponseStrategy 决定从多个 mock 响应中选择哪一个
type ResponseStrategy string

const (
	StrategySequence         ResponseStrategy = "SEQUENCE"
	StrategyRandom           ResponseStrategy = "RANDOM"
	StrategyStatusSimulation ResponseStrategy = "STATUS_SIMULATION"
	StrategyJSONPath         ResponseStrategy = "JSON_PATH"
)

func (s ResponseStrategy) IsValid() bool {
	switch s {
	case StrategySequence, StrategyRandom, StrategyStatusSimulation, StrategyJSONPath:
		return true
	default:
		return false
	}
}

func (s ResponseStrategy) String() string {
	return string(s)
}

// StatusCategory groups status codes for status simulation
type StatusCategory string

const (
	CategorySuccess     StatusCategory = "2xx"
	CategoryClientError StatusCategory = "4xx"
	CategoryServerError StatusCategory = "5xx"
)

// StatusCategories returns the categories in weight evaluation order.
func StatusCategories() []StatusCategory {
	return []StatusCategory{CategorySuccess, CategoryClientError, CategoryServerError}
}

func (c StatusCategory) IsValid() bool {
	switch c {
	case CategorySuccess, CategoryClientError, CategoryServerError:
		return true
	default:
		return false
	}
}

// CategoryOf maps a status code to its category. Anything below 400 counts as success,
// SOAP faults are delivered as 500 and land in 5xx.
func CategoryOf(statusCode int) StatusCategory {
	switch {
	case statusCode >= 500:
		return CategoryServerError
	case statusCode >= 400:
		return CategoryClientError
	default:
		return CategorySuccess
	}
}

// EventScope 事件容量的统计范围
type EventScope string

const (
	EventScopeGlobal    EventScope = "global"
	EventScopeOperation EventScope = "operation"
)

func (s EventScope) IsValid() bool {
	return s == EventScopeGlobal || s == EventScopeOperation
}
