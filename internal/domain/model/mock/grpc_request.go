package model

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// NewGRPCRequest 创建 gRPC RequestContext
//
// fullMethod 形如 /package.Service/Method, 消息体以 protojson 形式保存以便记录和 JSON_PATH 选择
func NewGRPCRequest(ctx context.Context, fullMethod string, req proto.Message) *RequestContext {
	md, _ := metadata.FromIncomingContext(ctx)

	headers := make(map[string]string, len(md))
	for k, v := range md {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	var body string
	if req != nil {
		marshaler := protojson.MarshalOptions{
			UseProtoNames:   true,
			EmitUnpopulated: true,
		}
		if b, err := marshaler.Marshal(req); err == nil {
			body = string(b)
		}
	}

	return &RequestContext{
		Protocol:        "grpc",
		Method:          grpcMethodName(fullMethod),
		URI:             fullMethod,
		Headers:         headers,
		Body:            body,
		DesiredCategory: parseStatusCategory(headers[HeaderStatusCategory]),
	}
}

func grpcMethodName(fullMethod string) string {
	parts := strings.Split(fullMethod, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return fullMethod
}
