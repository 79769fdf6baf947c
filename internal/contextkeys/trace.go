package contextkeys

import (
	"context"

	"github.com/google/uuid"
)

// TraceHeader - HTTP-заголовок и заголовок AMQP-сообщения с идентификатором трассировки
const TraceHeader = "X-Trace-ID"

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext возвращает пустую строку, если trace_id не задан
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID берет trace_id из контекста или генерирует новый
func EnsureTraceID(ctx context.Context, incoming string) (context.Context, string) {
	if incoming == "" {
		incoming = TraceIDFromContext(ctx)
	}
	if incoming == "" {
		incoming = uuid.NewString()
	}
	return ContextWithTraceID(ctx, incoming), incoming
}

// Detach сохраняет логгер и trace_id, но убирает отмену и дедлайн.
// Нужен для фоновой работы, которая переживает HTTP-запрос.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
