package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HeaderStatusCategory lets a caller ask status simulation for a specific category (2xx/4xx/5xx).
const HeaderStatusCategory = "x-mock-status-category"

// RequestContext is a normalized inbound request, already routed to an operation.
type RequestContext struct {
	Protocol        string
	Method          string
	URI             string
	Headers         map[string]string // key 统一小写
	Body            string
	DesiredCategory StatusCategory
}

// NewHTTPRequest 创建 HTTP RequestContext，请求体被读取并放回
func NewHTTPRequest(r *http.Request) *RequestContext {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	protocol := "http"
	if r.TLS != nil {
		protocol = "https"
	}

	return &RequestContext{
		Protocol:        protocol,
		Method:          r.Method,
		URI:             r.URL.RequestURI(),
		Headers:         headers,
		Body:            string(body),
		DesiredCategory: parseStatusCategory(headers[HeaderStatusCategory]),
	}
}

// BodyJSON decodes the body as arbitrary JSON.
func (r *RequestContext) BodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal([]byte(r.Body), &result); err != nil {
		return nil, fmt.Errorf("JSON解析失败: %w", err)
	}
	return result, nil
}

// Snapshot returns the request part of an event.
func (r *RequestContext) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		Protocol: r.Protocol,
		Method:   r.Method,
		URI:      r.URI,
		Headers:  copyHeaders(r.Headers),
		Body:     r.Body,
	}
}

func parseStatusCategory(value string) StatusCategory {
	c := StatusCategory(strings.ToLower(strings.TrimSpace(value)))
	if c.IsValid() {
		return c
	}
	return ""
}
