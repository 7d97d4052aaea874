package model

import (
	"fmt"
	"net/http"
)

// ResultKind tells the transport layer what to emit.
type ResultKind string

const (
	ResultRespond            ResultKind = "respond"
	ResultForward            ResultKind = "forward"
	ResultEcho               ResultKind = "echo"
	ResultServiceUnavailable ResultKind = "service_unavailable"
	ResultError              ResultKind = "error"
)

// ExecutionResult is the outcome of a single mock call.
type ExecutionResult struct {
	Kind           ResultKind
	StatusCode     int
	Headers        map[string]string
	Body           string
	MockResponseID string
	ForwardURL     string
	ErrorKind      ErrorKind
	Err            error

	Event     *Event // 记录成功的事件
	RecordErr error  // 事件记录失败不影响结果投递
}

func Respond(resp *MockResponse) *ExecutionResult {
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return &ExecutionResult{
		Kind:           ResultRespond,
		StatusCode:     status,
		Headers:        copyHeaders(resp.Headers),
		Body:           resp.Body,
		MockResponseID: resp.ID,
	}
}

func Forward(url string) *ExecutionResult {
	return &ExecutionResult{Kind: ResultForward, ForwardURL: url}
}

// Echo mirrors the inbound request back to the caller.
func Echo(req *RequestContext) *ExecutionResult {
	result := &ExecutionResult{Kind: ResultEcho, StatusCode: http.StatusOK}
	if req != nil {
		result.Body = req.Body
		if ct, ok := req.Headers["content-type"]; ok {
			result.Headers = map[string]string{"Content-Type": ct}
		}
	}
	return result
}

func ServiceUnavailable() *ExecutionResult {
	return &ExecutionResult{Kind: ResultServiceUnavailable, StatusCode: http.StatusServiceUnavailable}
}

func Failed(err error) *ExecutionResult {
	kind := ErrorKindOf(err)
	status := http.StatusInternalServerError
	if kind == ErrorKindStorageUnavailable {
		status = http.StatusServiceUnavailable
	}
	return &ExecutionResult{Kind: ResultError, StatusCode: status, ErrorKind: kind, Err: err}
}

// Snapshot converts the result into the response part of an event.
func (r *ExecutionResult) Snapshot() ResponseSnapshot {
	snapshot := ResponseSnapshot{
		Kind:           r.Kind,
		StatusCode:     r.StatusCode,
		Headers:        copyHeaders(r.Headers),
		Body:           r.Body,
		MockResponseID: r.MockResponseID,
		ForwardURL:     r.ForwardURL,
		ErrorKind:      r.ErrorKind,
	}
	if r.Err != nil {
		snapshot.ErrorMessage = r.Err.Error()
	}
	return snapshot
}

func (r *ExecutionResult) String() string {
	return fmt.Sprintf("Kind: %s, Status: %d, MockResponse: %s, Forward: %s, Error: %v",
		r.Kind, r.StatusCode, r.MockResponseID, r.ForwardURL, r.Err)
}

func copyHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	return copied
}
