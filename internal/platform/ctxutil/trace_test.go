package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLogFieldsSkipsUnsetIDs(t *testing.T) {
	var none *TraceData
	if got := none.LogFields(); got != nil {
		t.Fatalf("nil trace data: %v", got)
	}

	td := &TraceData{TraceID: "t-1", ConnID: "c-1"}
	got := td.LogFields()
	want := []interface{}{"trace_id", "t-1", "session_id", "c-1"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}

	td.UserID = uuid.New()
	if got := td.LogFields(); len(got) != 6 || got[5] != td.UserID.String() {
		t.Fatalf("user id missing: %v", got)
	}
}

func TestGetTraceDataRoundTrip(t *testing.T) {
	if GetTraceData(context.Background()) != nil {
		t.Fatalf("empty context carried trace data")
	}
	td := &TraceData{RequestID: "r-1"}
	ctx := WithTraceData(context.Background(), td)
	if GetTraceData(ctx) != td {
		t.Fatalf("trace data not returned")
	}
}
