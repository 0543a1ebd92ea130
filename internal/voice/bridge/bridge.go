// Package bridge relays one browser voice connection to the realtime
// assistant and answers the assistant's tool calls locally.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/services"
	"github.com/yungbote/neurobridge-voice/internal/voice/protocol"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
	"github.com/yungbote/neurobridge-voice/internal/voice/tools"
)

const (
	msgUpstreamLost = "The voice assistant disconnected. Please reconnect."
	msgEvicted      = "This voice session was replaced by a newer connection."
	msgMalformed    = "Malformed message from client."
	msgBadArguments = "I couldn't understand the details of that request. Please try again."
)

// errClientGone ends the bridge without an error frame; there is nobody left
// to read one.
var errClientGone = errors.New("client disconnected")

// Executor runs a named tool against a session.
type Executor interface {
	Execute(ctx context.Context, name string, args tools.Args, id services.Identity, sess *session.Session) tools.Result
}

type Bridge struct {
	cfg      Config
	log      *logger.Logger
	exec     Executor
	store    session.Store
	identity services.Identity
	sess     *session.Session

	client   *socket
	upstream *socket

	audioChunks int

	endMu   sync.Mutex
	endCode apierr.Code
}

func New(cfg Config, log *logger.Logger, exec Executor, store session.Store, id services.Identity, sess *session.Session, client, upstream *websocket.Conn) *Bridge {
	cfg = cfg.withDefaults()
	return &Bridge{
		cfg:      cfg,
		log:      log.With("component", "VoiceBridge", "user_id", id.ID, "session_id", sess.ID),
		exec:     exec,
		store:    store,
		identity: id,
		sess:     sess,
		client:   newSocket(client, cfg.WriteTimeout),
		upstream: newSocket(upstream, cfg.WriteTimeout),
	}
}

// Run pumps frames in both directions until either side goes away, the
// session is evicted, or ctx ends. Both sockets are closed on return. A nil
// error means an orderly end.
func (b *Bridge) Run(ctx context.Context) error {
	b.prepare(b.client.conn)
	b.prepare(b.upstream.conn)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.clientToUpstream(gctx) })
	g.Go(func() error { return b.upstreamToClient(gctx) })
	g.Go(func() error { return b.keepalive(gctx) })
	g.Go(func() error { return b.watchEviction(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		b.shutdown()
		return nil
	})

	err := g.Wait()
	b.shutdown()
	b.log.Info("Voice bridge closed", "audio_chunks", b.audioChunks, "reason", errString(err))

	switch {
	case err == nil, errors.Is(err, errClientGone), errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}

func (b *Bridge) prepare(conn *websocket.Conn) {
	conn.SetReadLimit(b.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(b.cfg.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(b.cfg.pongWait()))
	})
}

func (b *Bridge) shutdown() {
	b.endMu.Lock()
	code := b.endCode
	b.endMu.Unlock()

	b.upstream.close(websocket.CloseNormalClosure, "")
	if code.Fatal() {
		b.client.close(websocket.CloseInternalServerErr, string(code))
		return
	}
	b.client.close(websocket.CloseNormalClosure, "")
}

// terminate reports a connection-ending condition to the client once.
func (b *Bridge) terminate(code apierr.Code, msg string, cause error) error {
	b.endMu.Lock()
	defer b.endMu.Unlock()
	if b.endCode == "" {
		b.endCode = code
		if err := b.client.text(protocol.ErrorFrame(string(code), msg)); err != nil {
			b.log.Debug("Error frame not delivered", "code", code, "error", err)
		}
	}
	return apierr.Wrap(code, cause, msg)
}

func (b *Bridge) clientToUpstream(ctx context.Context) error {
	for {
		mt, data, err := b.client.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				b.log.Debug("Client read ended", "error", err)
			}
			return errClientGone
		}

		switch mt {
		case websocket.BinaryMessage:
			frame, err := protocol.AudioAppend(data)
			if err != nil {
				return fmt.Errorf("encode audio: %w", err)
			}
			if err := b.upstream.text(frame); err != nil {
				return b.terminate(apierr.CodeUpstreamFailure, msgUpstreamLost, err)
			}
			b.audioChunks++
			if b.audioChunks%b.cfg.AudioLogEvery == 0 {
				b.log.Debug("Audio relayed", "chunks", b.audioChunks)
			}

		case websocket.TextMessage:
			typ, err := protocol.PeekType(data)
			if err != nil {
				return b.terminate(apierr.CodeInvalidArgument, msgMalformed, err)
			}
			if !protocol.ClientForwarded(typ) {
				b.log.Debug("Client event dropped", "type", typ)
				continue
			}
			if err := b.upstream.text(data); err != nil {
				return b.terminate(apierr.CodeUpstreamFailure, msgUpstreamLost, err)
			}
		}
	}
}

func (b *Bridge) upstreamToClient(ctx context.Context) error {
	for {
		mt, data, err := b.upstream.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return b.terminate(apierr.CodeUpstreamFailure, msgUpstreamLost, err)
		}
		if mt != websocket.TextMessage {
			continue
		}

		typ, err := protocol.PeekType(data)
		if err != nil {
			b.log.Warn("Upstream event without type", "error", err)
			continue
		}

		switch {
		case typ == protocol.TypeFunctionCallDone:
			if err := b.handleFunctionCall(ctx, data); err != nil {
				return err
			}
		case protocol.Relayed(typ):
			if typ == protocol.TypeError {
				b.log.Warn("Upstream error event", "payload", string(data))
			}
			if err := b.client.text(data); err != nil {
				return errClientGone
			}
		}
	}
}

func (b *Bridge) handleFunctionCall(ctx context.Context, raw []byte) error {
	call, err := protocol.ParseFunctionCall(raw)
	if err != nil {
		b.log.Warn("Unusable function call", "error", err)
		return nil
	}

	var res tools.Result
	if args, err := tools.ParseArgs(call.Arguments); err != nil {
		b.log.Warn("Function arguments not JSON", "tool", call.Name, "error", err)
		res = tools.Result{Success: false, Code: apierr.CodeInvalidArgument, Message: msgBadArguments}
	} else {
		res = b.exec.Execute(ctx, call.Name, args, b.identity, b.sess)
		if err := b.store.Save(ctx, b.sess); err != nil {
			b.log.Warn("Session save failed", "tool", call.Name, "error", err)
		}
	}

	out, err := protocol.FunctionOutput(call.CallID, res.Output())
	if err != nil {
		return fmt.Errorf("encode function output: %w", err)
	}
	if err := b.upstream.text(out); err != nil {
		return b.terminate(apierr.CodeUpstreamFailure, msgUpstreamLost, err)
	}
	if err := b.upstream.text(protocol.ResponseCreate()); err != nil {
		return b.terminate(apierr.CodeUpstreamFailure, msgUpstreamLost, err)
	}

	for _, ev := range res.Events {
		frame, err := protocol.ContextUpdate(ev.Data())
		if err != nil {
			b.log.Warn("Context update not encodable", "action", ev.Action, "error", err)
			continue
		}
		if err := b.client.text(frame); err != nil {
			return errClientGone
		}
	}
	if res.Navigation != nil {
		frame, err := protocol.Navigation(res.Navigation)
		if err != nil {
			return fmt.Errorf("encode navigation: %w", err)
		}
		if err := b.client.text(frame); err != nil {
			return errClientGone
		}
	}
	return nil
}

func (b *Bridge) keepalive(ctx context.Context) error {
	t := time.NewTicker(b.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := b.upstream.ping(); err != nil {
				return b.terminate(apierr.CodeUpstreamFailure, msgUpstreamLost, err)
			}
			if err := b.client.ping(); err != nil {
				return errClientGone
			}
		}
	}
}

func (b *Bridge) watchEviction(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.sess.Evicted():
		return b.terminate(apierr.CodePreconditionFailed, msgEvicted, nil)
	}
}

func errString(err error) string {
	if err == nil {
		return "closed"
	}
	return err.Error()
}
