// Package grpc_mock_app serves mock operations over gRPC.
//
// Any method /<package.Service>/<operationId> is accepted without registration; request and
// response messages are google.protobuf.Struct so mock bodies stay plain JSON objects.
package grpc_mock_app

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"go_virtual_mock/internal/domain/iface"
	model "go_virtual_mock/internal/domain/model/mock"
	configs "go_virtual_mock/internal/infra/config"
	"go_virtual_mock/utils"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var GRPCSet = wire.NewSet(configs.NewGRPCConfig, NewMockServer)

type MockServer struct {
	MockService iface.MockExecutionService
	config      *configs.GRPCConfig

	mu         sync.Mutex
	grpcServer *grpc.Server
}

func NewMockServer(mockService iface.MockExecutionService, config *configs.GRPCConfig) *MockServer {
	return &MockServer{
		MockService: mockService,
		config:      config,
	}
}

// Start 监听配置的地址, 在后台提供服务
func (s *MockServer) Start() error {
	lis, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	srv, err := s.newGRPCServer()
	if err != nil {
		lis.Close()
		return err
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			utils.GetLogger().Errorf("grpc mock server err: %v", err)
		}
	}()
	utils.GetLogger().Infof("grpc mock server listening on %s", lis.Addr())
	return nil
}

// Serve blocks until Stop is called or lis fails.
func (s *MockServer) Serve(lis net.Listener) error {
	srv, err := s.newGRPCServer()
	if err != nil {
		return err
	}
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *MockServer) newGRPCServer() (*grpc.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grpcServer != nil {
		return nil, errors.New("grpc mock server already running")
	}
	s.grpcServer = grpc.NewServer(grpc.UnknownServiceHandler(s.handleStream))
	return s.grpcServer, nil
}

func (s *MockServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
		s.grpcServer = nil
	}
}

func (s *MockServer) handleStream(_ interface{}, stream grpc.ServerStream) (err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.GetLogger().Errorf("panic in grpc mock handler: %v", r)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	fullMethod, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return status.Error(codes.Internal, "failed to get method from stream")
	}
	operationID, ok := operationFromMethod(fullMethod)
	if !ok {
		return status.Errorf(codes.Unimplemented, "invalid method path: %s", fullMethod)
	}

	in := &structpb.Struct{}
	if err := stream.RecvMsg(in); err != nil {
		return status.Errorf(codes.InvalidArgument, "failed to receive request: %v", err)
	}

	ctx := stream.Context()
	result := s.MockService.Handle(ctx, operationID, model.NewGRPCRequest(ctx, fullMethod, in))
	utils.GetLogger().WithFields(logrus.Fields{
		"method": fullMethod,
		"result": result.Kind,
	}).Debug("grpc mock call")

	return writeResult(stream, in, result)
}

func writeResult(stream grpc.ServerStream, in *structpb.Struct, result *model.ExecutionResult) error {
	switch result.Kind {
	case model.ResultRespond:
		if md := responseMetadata(result.Headers); len(md) > 0 {
			if err := stream.SetHeader(md); err != nil {
				utils.GetLogger().Warnf("set grpc header: %v", err)
			}
		}
		if result.StatusCode >= 400 {
			return status.Error(codeFromHTTPStatus(result.StatusCode), result.Body)
		}
		out := &structpb.Struct{}
		if strings.TrimSpace(result.Body) != "" {
			if err := protojson.Unmarshal([]byte(result.Body), out); err != nil {
				return status.Errorf(codes.Internal, "mock response %s is not a JSON object: %v", result.MockResponseID, err)
			}
		}
		return stream.SendMsg(out)
	case model.ResultEcho:
		return stream.SendMsg(in)
	case model.ResultForward:
		return status.Errorf(codes.Unimplemented, "forwarding to %s is only supported over http", result.ForwardURL)
	case model.ResultServiceUnavailable:
		return status.Error(codes.Unavailable, "operation is disabled")
	default:
		message := string(result.ErrorKind)
		if result.Err != nil {
			message = result.Err.Error()
		}
		if result.ErrorKind == model.ErrorKindStorageUnavailable {
			return status.Error(codes.Unavailable, message)
		}
		return status.Error(codes.Internal, message)
	}
}

// operationFromMethod /package.Service/operationId -> operationId
func operationFromMethod(fullMethod string) (string, bool) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// responseMetadata 跳过 gRPC 保留的头
func responseMetadata(headers map[string]string) metadata.MD {
	md := metadata.MD{}
	for k, v := range headers {
		key := strings.ToLower(k)
		if key == "content-type" || strings.HasPrefix(key, "grpc-") || strings.HasPrefix(key, ":") {
			continue
		}
		md.Append(key, v)
	}
	return md
}

func codeFromHTTPStatus(code int) codes.Code {
	switch code {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusNotImplemented:
		return codes.Unimplemented
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	}
	if code < 500 {
		return codes.FailedPrecondition
	}
	return codes.Internal
}
