package http_mock_app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
)

// Forwarder 将请求转发到 FORWARDED 操作配置的上游地址
type Forwarder interface {
	Forward(ctx context.Context, target string, r *http.Request) (*http.Response, error)
}

type httpForwarder struct {
	client *http.Client
}

var _ Forwarder = (*httpForwarder)(nil)

func NewHTTPForwarder(c *configs.ForwardConfig) Forwarder {
	return &httpForwarder{
		client: &http.Client{Timeout: c.Timeout},
	}
}

// hop-by-hop 头不转发
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func (f *httpForwarder) Forward(ctx context.Context, target string, r *http.Request) (*http.Response, error) {
	if _, err := url.ParseRequestURI(target); err != nil {
		return nil, fmt.Errorf("invalid forward target %q: %w", target, err)
	}

	var body io.Reader = r.Body
	if r.Body == nil || r.ContentLength == 0 {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build forward request: %w", err)
	}
	if r.ContentLength > 0 {
		req.ContentLength = r.ContentLength
	}
	copyHeader(req.Header, r.Header)
	req.Header.Del(model.HeaderStatusCategory)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to forward request: %w", err)
	}
	return resp, nil
}

// forwardTarget 拼接上游地址, 子路径和查询参数
func forwardTarget(endpoint, subpath, rawQuery string) string {
	target := endpoint
	if subpath != "" {
		target = strings.TrimRight(target, "/") + "/" + strings.TrimLeft(subpath, "/")
	}
	if rawQuery != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + rawQuery
	}
	return target
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
	for _, h := range hopHeaders {
		dst.Del(h)
	}
}
