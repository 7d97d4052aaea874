package http_mock_app

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	model "go_virtual_mock/internal/domain/model/mock"
	"go_virtual_mock/internal/domain/services"
	"go_virtual_mock/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/sirupsen/logrus"
)

const contentTypeJSON = "application/json"

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(b *rf.Context, status int, v any) {
	if err := b.WriteHeaderAndJSON(status, v, contentTypeJSON); err != nil {
		utils.GetLogger().Errorf("write json response err: %v", err)
	}
}

// writeError 按错误类型映射状态码
func writeError(b *rf.Context, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		utils.GetLogger().Errorf("request failed: %v", err)
	}
	writeJSON(b, status, errorBody{Error: kind, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, string(model.ErrorKindStorageUnavailable)
	case errors.Is(err, model.ErrProjectNameTaken):
		return http.StatusConflict, "ProjectNameTaken"
	case services.IsNotFound(err):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, model.ErrInvalidConfiguration):
		return http.StatusBadRequest, string(model.ErrorKindInvalidConfiguration)
	default:
		return http.StatusInternalServerError, string(model.ErrorKindInternal)
	}
}

// validatable 请求 DTO 的校验接口
type validatable interface {
	Validate() error
}

// decode 读取并校验请求体, 失败时已写出错误响应
func decode(b *rf.Context, req validatable) bool {
	if err := b.ReadEntity(req); err != nil {
		utils.GetLogger().Errorf("read request body err: %v", err)
		writeError(b, fmt.Errorf("%w: read request body: %w", model.ErrInvalidConfiguration, err))
		return false
	}
	if err := req.Validate(); err != nil {
		utils.GetLogger().Errorf("validate request err: %v", err)
		writeError(b, err)
		return false
	}
	return true
}

func recoverPanic(b *rf.Context) {
	if err := recover(); err != nil {
		utils.GetLogger().WithFields(logrus.Fields{
			"panic": err,
			"stack": string(debug.Stack()),
		}).Error("handle request panic")
		writeJSON(b, http.StatusInternalServerError, errorBody{
			Error:   string(model.ErrorKindInternal),
			Message: "Internal server error",
		})
	}
}
