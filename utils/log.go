package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogPath 日志文件路径环境变量
const EnvLogPath = "MOCK_LOG_PATH"

// CustomFormatter 自定义日志格式
type CustomFormatter struct {
	logrus.JSONFormatter
}

// Format 实现自定义格式化
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["pid"] = os.Getpid()
	entry.Data["goroutine_id"] = getGoroutineID()

	return f.JSONFormatter.Format(entry)
}

var (
	Log  *logrus.Logger
	once sync.Once
)

// InitLogger 按配置初始化全局 logger, 只有第一次调用 (或第一次 GetLogger) 生效
func InitLogger(logFilePath, level string) *logrus.Logger {
	once.Do(func() { Log = newLogger(logFilePath, level) })
	return Log
}

// GetLogger returns the singleton logger instance
func GetLogger() *logrus.Logger {
	return InitLogger("", "")
}

func newLogger(logFilePath, level string) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&CustomFormatter{
		JSONFormatter: logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: shortCaller,
		},
	})

	logFilePath = resolveLogPath(logFilePath)
	var out io.Writer = os.Stdout
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		// 目录不可写时只输出到 stdout
		fmt.Fprintf(os.Stderr, "failed to create log directory, logging to stdout only: %v\n", err)
	} else {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)

	logger.SetReportCaller(true)
	return logger
}

// shortCaller func 只保留包名.函数名, file 为 文件名:行号
func shortCaller(frame *runtime.Frame) (string, string) {
	return filepath.Base(frame.Function), fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

func resolveLogPath(path string) string {
	if path != "" {
		return path
	}
	if path = os.Getenv(EnvLogPath); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "go_virtual_mock", "app.log")
}

// getGoroutineID 获取当前协程ID
func getGoroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	fmt.Sscanf(string(b), "goroutine %d", &id)
	return id
}
