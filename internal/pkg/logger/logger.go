package logger

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var root zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	root = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 根据配置调整全局日志级别与服务名字段。
func Init(serviceName, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	root = zerolog.New(os.Stdout).Level(lvl).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局根 logger。
func Logger() *zerolog.Logger {
	return &root
}

// Ctx 返回与请求上下文关联的 logger。
// 如果上下文中存在有效的 trace，则自动附带 trace_id，便于日志与链路关联。
func Ctx(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &root
	}
	l := root.With().Str("trace_id", sc.TraceID().String()).Logger()
	return &l
}
