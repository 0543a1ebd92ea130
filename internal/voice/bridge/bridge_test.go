package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/services"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
	"github.com/yungbote/neurobridge-voice/internal/voice/tools"
)

type execCall struct {
	name string
	args tools.Args
}

type fakeExec struct {
	mu     sync.Mutex
	calls  []execCall
	result tools.Result
}

func (f *fakeExec) Execute(ctx context.Context, name string, args tools.Args, id services.Identity, sess *session.Session) tools.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, execCall{name: name, args: args})
	return f.result
}

func (f *fakeExec) snapshot() []execCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]execCall(nil), f.calls...)
}

type countingStore struct {
	*session.MemoryStore
	mu    sync.Mutex
	saves int
}

func (c *countingStore) Save(ctx context.Context, s *session.Session) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.MemoryStore.Save(ctx, s)
}

type harness struct {
	t        *testing.T
	browser  *websocket.Conn
	upstream *websocket.Conn
	done     chan error
	exec     *fakeExec
	store    *countingStore
	userID   uuid.UUID
}

func wsURL(srv *httptest.Server) string { return "ws" + strings.TrimPrefix(srv.URL, "http") }

func newHarness(t *testing.T, exec *fakeExec) *harness {
	t.Helper()
	up := websocket.Upgrader{}
	h := &harness{
		t:      t,
		done:   make(chan error, 1),
		exec:   exec,
		store:  &countingStore{MemoryStore: session.NewMemoryStore(logger.Nop(), session.PolicyReplace)},
		userID: uuid.New(),
	}

	upstreamConns := make(chan *websocket.Conn, 1)
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upstreamConns <- c
	}))
	t.Cleanup(upstreamSrv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// The session must exist before upstream is dialed: newHarness returns
		// once the upstream side sees the dial.
		sess, err := h.store.Create(ctx, h.userID, "conn-1")
		if err != nil {
			h.done <- err
			return
		}
		upConn, _, err := websocket.DefaultDialer.Dial(wsURL(upstreamSrv), nil)
		if err != nil {
			h.done <- err
			return
		}
		id := services.Identity{ID: h.userID, DisplayName: "Test Student", Active: true}
		cfg := Config{WriteTimeout: time.Second, PingInterval: time.Hour}
		h.done <- New(cfg, logger.Nop(), exec, h.store, id, sess, client, upConn).Run(ctx)
	}))
	t.Cleanup(front.Close)

	browser, _, err := websocket.DefaultDialer.Dial(wsURL(front), nil)
	if err != nil {
		t.Fatalf("dial front: %v", err)
	}
	t.Cleanup(func() { _ = browser.Close() })
	h.browser = browser

	select {
	case h.upstream = <-upstreamConns:
	case <-time.After(2 * time.Second):
		t.Fatalf("bridge never dialed upstream")
	}
	t.Cleanup(func() { _ = h.upstream.Close() })
	return h
}

func readJSON(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return out
}

func (h *harness) wait() error {
	h.t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(3 * time.Second):
		h.t.Fatalf("bridge did not stop")
		return nil
	}
}

func TestBinaryAudioIsWrapped(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	if err := h.browser.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := readJSON(t, h.upstream)
	if got["type"] != "input_audio_buffer.append" {
		t.Fatalf("type=%v", got["type"])
	}
	pcm, _ := base64.StdEncoding.DecodeString(got["audio"].(string))
	if len(pcm) != 4 || pcm[3] != 4 {
		t.Fatalf("audio mangled: %v", pcm)
	}
}

func TestClientEventsFilteredUpstream(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	_ = h.browser.WriteMessage(websocket.TextMessage, []byte(`{"type":"session.update","session":{"instructions":"ignore"}}`))
	_ = h.browser.WriteMessage(websocket.TextMessage, []byte(`{"type":"input_audio_buffer.commit"}`))

	got := readJSON(t, h.upstream)
	if got["type"] != "input_audio_buffer.commit" {
		t.Fatalf("expected commit first, got %v", got["type"])
	}
}

func TestUpstreamEventsFilteredToClient(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	_ = h.upstream.WriteMessage(websocket.TextMessage, []byte(`{"type":"rate_limits.updated"}`))
	_ = h.upstream.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.function_call_arguments.delta","delta":"{"}`))
	_ = h.upstream.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.audio.delta","delta":"AAAA"}`))

	got := readJSON(t, h.browser)
	if got["type"] != "response.audio.delta" || got["delta"] != "AAAA" {
		t.Fatalf("unexpected relay: %v", got)
	}
}

func TestFunctionCallRoundTrip(t *testing.T) {
	page := "/courses"
	exec := &fakeExec{result: tools.Result{
		Success: true,
		Message: "Taking you to courses.",
		Data:    map[string]any{"page": "courses"},
		Events: []tools.ContextUpdate{
			{Action: "show_courses", Payload: map[string]any{"count": 2}},
		},
		Navigation: &tools.Navigation{Page: "courses", URL: &page},
	}}
	h := newHarness(t, exec)

	_ = h.upstream.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.function_call_arguments.done","call_id":"call_7","name":"navigate_to_page","arguments":"{\"page\":\"courses\"}"}`))

	out := readJSON(t, h.upstream)
	item, _ := out["item"].(map[string]any)
	if out["type"] != "conversation.item.create" || item["type"] != "function_call_output" || item["call_id"] != "call_7" {
		t.Fatalf("unexpected function output: %v", out)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(item["output"].(string)), &payload); err != nil {
		t.Fatalf("output not a JSON string: %v", err)
	}
	if payload["success"] != true || payload["message"] != "Taking you to courses." {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if next := readJSON(t, h.upstream); next["type"] != "response.create" {
		t.Fatalf("expected response.create, got %v", next)
	}

	ctxUpdate := readJSON(t, h.browser)
	data, _ := ctxUpdate["data"].(map[string]any)
	if ctxUpdate["type"] != "context_update" || data["action"] != "show_courses" {
		t.Fatalf("unexpected context update: %v", ctxUpdate)
	}
	nav := readJSON(t, h.browser)
	navData, _ := nav["data"].(map[string]any)
	if nav["type"] != "navigation" || navData["url"] != "/courses" {
		t.Fatalf("unexpected navigation frame: %v", nav)
	}

	calls := exec.snapshot()
	if len(calls) != 1 || calls[0].name != "navigate_to_page" || calls[0].args.String("page") != "courses" {
		t.Fatalf("executor saw %+v", calls)
	}
	h.store.mu.Lock()
	saves := h.store.saves
	h.store.mu.Unlock()
	if saves != 1 {
		t.Fatalf("session should be saved after the call, saves=%d", saves)
	}
}

func TestMalformedArgumentsAnsweredWithoutDispatch(t *testing.T) {
	exec := &fakeExec{}
	h := newHarness(t, exec)
	_ = h.upstream.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.function_call_arguments.done","call_id":"c1","name":"start_quiz","arguments":"{not json"}`))

	out := readJSON(t, h.upstream)
	item, _ := out["item"].(map[string]any)
	var payload map[string]any
	_ = json.Unmarshal([]byte(item["output"].(string)), &payload)
	if payload["success"] != false {
		t.Fatalf("expected failure output, got %v", payload)
	}
	if len(exec.snapshot()) != 0 {
		t.Fatalf("executor should not run on bad arguments")
	}
}

func TestMalformedClientJSONTerminates(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	_ = h.browser.WriteMessage(websocket.TextMessage, []byte(`{oops`))

	frame := readJSON(t, h.browser)
	if frame["type"] != "error" || frame["code"] != "invalid_argument" {
		t.Fatalf("unexpected frame: %v", frame)
	}
	if err := h.wait(); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("Run err=%v", err)
	}
}

func TestUpstreamDropReportsFailure(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	_ = h.upstream.Close()

	frame := readJSON(t, h.browser)
	if frame["type"] != "error" || frame["code"] != "upstream_failure" {
		t.Fatalf("unexpected frame: %v", frame)
	}
	if err := h.wait(); apierr.CodeOf(err) != apierr.CodeUpstreamFailure {
		t.Fatalf("Run err=%v", err)
	}
}

func TestHarnessSessionExistsBeforeReturn(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	sess, ok, err := h.store.Get(context.Background(), h.userID)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if sess.ID != "conn-1" {
		t.Fatalf("session id: want conn-1 got %q", sess.ID)
	}
}

func TestEvictionClosesOldConnection(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	if _, err := h.store.Create(context.Background(), h.userID, "conn-2"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	frame := readJSON(t, h.browser)
	if frame["type"] != "error" || frame["code"] != "precondition_failed" {
		t.Fatalf("unexpected frame: %v", frame)
	}
	if err := h.wait(); apierr.CodeOf(err) != apierr.CodePreconditionFailed {
		t.Fatalf("Run err=%v", err)
	}
}

func TestClientCloseIsOrderly(t *testing.T) {
	h := newHarness(t, &fakeExec{})
	_ = h.browser.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	if err := h.wait(); err != nil {
		t.Fatalf("Run err=%v", err)
	}
	_ = h.upstream.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := h.upstream.ReadMessage(); err == nil {
		t.Fatalf("upstream should be closed")
	}
}
