package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}

// TraceData follows one request through the logs. A voice upgrade also
// carries its connection id and, once the token resolves, the user.
type TraceData struct {
	TraceID   string
	RequestID string
	ConnID    string
	UserID    uuid.UUID
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the ids that are set, as logger key-value pairs.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	var out []interface{}
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.ConnID != "" {
		out = append(out, "session_id", td.ConnID)
	}
	if td.UserID != uuid.Nil {
		out = append(out, "user_id", td.UserID.String())
	}
	return out
}
