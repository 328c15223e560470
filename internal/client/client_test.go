package client

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bomberbot/pkg/ai"
	"bomberbot/pkg/core"
	"bomberbot/pkg/protocol"
)

func parseJoinToken(secret, token string) (*JoinClaims, error) {
	claims := &JoinClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return claims, err
}

func TestJoinToken(t *testing.T) {
	token, err := GenerateJoinToken("secret", "g1", "t1", "p1", time.Minute)
	if err != nil {
		t.Fatalf("GenerateJoinToken() error = %v", err)
	}
	claims, err := parseJoinToken("secret", token)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if claims.GameID != "g1" || claims.TeamID != "t1" || claims.PlayerID != "p1" || claims.Issuer != tokenIssuer {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := parseJoinToken("other", token); err == nil {
		t.Errorf("token verified with the wrong secret")
	}
	expired, _ := GenerateJoinToken("secret", "g1", "t1", "p1", -time.Minute)
	if _, err := parseJoinToken("secret", expired); err == nil {
		t.Errorf("expired token accepted")
	}
	if _, err := GenerateJoinToken("", "g", "t", "p", time.Minute); err == nil {
		t.Errorf("empty secret accepted")
	}
}

func TestFramedConnRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	left, right := newFramedConn(a), newFramedConn(b)
	defer left.Close()
	defer right.Close()

	msg, err := protocol.NewControl(core.ActionLeft)
	if err != nil {
		t.Fatal(err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- left.WriteMessage(msg) }()

	got, err := right.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Action string `json:"action"`
		} `json:"data"`
	}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("unmarshal %s: %v", got, err)
	}
	if decoded.Type != protocol.TypeControl || decoded.Data.Action != "l" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFramedConnRejectsOversizedFrame(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	conn := newFramedConn(b)
	defer conn.Close()

	go func() {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], MaxPacketSize+1)
		_, _ = a.Write(header[:])
	}()

	if _, err := conn.ReadMessage(); !errors.Is(err, ErrPacketTooLarge) {
		t.Errorf("ReadMessage() error = %v, want ErrPacketTooLarge", err)
	}
}

func TestDialUnsupportedTransport(t *testing.T) {
	if _, err := Dial(context.Background(), "udp", "127.0.0.1:1", time.Second); !errors.Is(err, ErrUnsupportedTransport) {
		t.Errorf("Dial() error = %v, want ErrUnsupportedTransport", err)
	}
}

func TestHostPort(t *testing.T) {
	cases := map[string]string{
		"tcp://10.0.0.1:9000": "10.0.0.1:9000",
		"127.0.0.1:9000":      "127.0.0.1:9000",
		"localhost:9000":      "localhost:9000",
	}
	for in, want := range cases {
		if got := hostPort(in); got != want {
			t.Errorf("hostPort(%q) = %q, want %q", in, got, want)
		}
	}
}

// fakeConn 内存连接：inbound 推送服务器消息，outbound 收集客户端消息
type fakeConn struct {
	inbound  chan []byte
	outbound chan []byte
	done     chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan []byte, 16),
		outbound: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.done:
		return nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case c.outbound <- data:
		return nil
	case <-c.done:
		return net.ErrClosed
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// bombDecider 每个事件都放炸弹
type bombDecider struct {
	mu       sync.Mutex
	events   []core.EventKind
	observed int
	resets   int
}

func (d *bombDecider) Process(ev core.Event) (core.Decision, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev.Kind)
	if ev.Kind == core.EventGameOver {
		return core.Decision{}, false
	}
	return core.Control(core.ActionBomb), true
}

func (d *bombDecider) Observe(core.Event) {
	d.mu.Lock()
	d.observed++
	d.mu.Unlock()
}

func (d *bombDecider) Reset() {
	d.mu.Lock()
	d.resets++
	d.mu.Unlock()
}

type memRecorder struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *memRecorder) Record(data []byte) error {
	r.mu.Lock()
	r.frames = append(r.frames, data)
	r.mu.Unlock()
	return nil
}

func recv(t *testing.T, c *fakeConn) string {
	t.Helper()
	select {
	case data := <-c.outbound:
		return string(data)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an outbound message")
		return ""
	}
}

func startSession(t *testing.T, cfg SessionConfig, agent Decider) (*fakeConn, context.CancelFunc, <-chan error) {
	t.Helper()
	conn := newFakeConn()
	s := NewSession(cfg, agent, nil)
	s.DialFunc = func(context.Context) (Conn, error) { return conn, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return conn, cancel, done
}

func TestSessionJoinThenControl(t *testing.T) {
	rec := &memRecorder{}
	agent := &bombDecider{}
	cfg := SessionConfig{
		Join:      protocol.JoinGame{GameID: "g", PlayerID: "p1", TeamID: "t"},
		JWTSecret: "secret",
		Recorder:  rec,
	}
	conn, cancel, done := startSession(t, cfg, agent)

	join := recv(t, conn)
	if !strings.Contains(join, `"type":"join_game"`) || !strings.Contains(join, `"token":"`) {
		t.Errorf("first message = %s, want join_game with token", join)
	}

	conn.inbound <- []byte(`{"type":"join_success"}`)
	conn.inbound <- []byte(`not json`)
	conn.inbound <- []byte(`{"type":"tick"}`)

	if got, want := recv(t, conn), `{"type":"control","data":{"action":"b"}}`; got != want {
		t.Errorf("control = %s, want %s", got, want)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() after cancel = %v, want nil", err)
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if len(agent.events) != 1 || agent.events[0] != core.EventTick {
		t.Errorf("agent saw %v, want one tick", agent.events)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.frames) != 3 {
		t.Errorf("recorded %d frames, want 3", len(rec.frames))
	}
}

func TestSessionThrottlesActions(t *testing.T) {
	cfg := SessionConfig{
		Join:                protocol.JoinGame{PlayerID: "p1"},
		MaxActionsPerSecond: 0.01,
	}
	agent := &bombDecider{}
	conn, cancel, done := startSession(t, cfg, agent)
	defer func() {
		cancel()
		<-done
	}()

	recv(t, conn) // join_game
	conn.inbound <- []byte(`{"type":"tick"}`)
	conn.inbound <- []byte(`{"type":"tick"}`)
	recv(t, conn)

	select {
	case extra := <-conn.outbound:
		t.Errorf("throttled action was sent: %s", extra)
	case <-time.After(100 * time.Millisecond):
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if len(agent.events) != 1 || agent.observed != 1 {
		t.Errorf("decided %d, observed %d; want the throttled tick observed only", len(agent.events), agent.observed)
	}
}

func TestSessionEndsWhenServerCloses(t *testing.T) {
	conn, cancel, done := startSession(t, SessionConfig{}, &bombDecider{})
	defer cancel()

	recv(t, conn)
	conn.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Errorf("Run() = nil, want a read error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run() did not return after the connection closed")
	}
}

func TestRunWithReconnect(t *testing.T) {
	agent := &bombDecider{}
	s := NewSession(SessionConfig{ReconnectDelay: time.Millisecond}, agent, nil)

	var mu sync.Mutex
	dials := 0
	ctx, cancel := context.WithCancel(context.Background())
	s.DialFunc = func(context.Context) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		if dials >= 3 {
			cancel()
		}
		return nil, errors.New("refused")
	}

	if err := s.RunWithReconnect(ctx); err != nil {
		t.Errorf("RunWithReconnect() = %v, want nil", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if dials != 3 {
		t.Errorf("dials = %d, want 3", dials)
	}
	if agent.resets < 2 {
		t.Errorf("agent reset %d times, want at least 2", agent.resets)
	}
}

// notifyingAgent 每处理完一条事件通知一次
type notifyingAgent struct {
	*ai.AIController
	handled chan string
}

func (a *notifyingAgent) Process(ev core.Event) (core.Decision, bool) {
	d, ok := a.AIController.Process(ev)
	a.handled <- "process"
	return d, ok
}

func (a *notifyingAgent) Observe(ev core.Event) {
	a.AIController.Observe(ev)
	a.handled <- "observe"
}

// 自己在 (1,1)，右侧是砖块，下方有逃生路线
const besideBrick = `{"type":"initial_state",
	"map":{"width":5,"height":5,"tiles":[[1,1,1,1,1],[1,0,2,0,1],[1,0,1,0,1],[1,0,0,0,1],[1,1,1,1,1]]},
	"players":[{"id":"me","p":{"x":100,"y":100},"s":"alive","bl":1,"bp":0,"pow":1,"tid":"a"}],
	"bombs":[],"items":[]}`

func TestThrottledTickLeavesNoPredictedBomb(t *testing.T) {
	for _, tc := range []struct {
		name      string
		exhausted bool
		wantBombs int
	}{
		{name: "token available", wantBombs: 1},
		{name: "limiter exhausted", exhausted: true, wantBombs: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			agent := &notifyingAgent{AIController: ai.NewAIController("me", nil), handled: make(chan string, 4)}
			s := NewSession(SessionConfig{Join: protocol.JoinGame{PlayerID: "me"}, MaxActionsPerSecond: 0.01}, agent, nil)
			if tc.exhausted {
				s.limiter.Allow()
			}
			conn := newFakeConn()
			s.DialFunc = func(context.Context) (Conn, error) { return conn, nil }
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- s.Run(ctx) }()
			defer func() {
				cancel()
				<-done
			}()

			recv(t, conn) // join_game
			conn.inbound <- []byte(besideBrick)
			conn.inbound <- []byte(`{"type":"tick"}`)
			for i := 0; i < 2; i++ {
				select {
				case <-agent.handled:
				case <-time.After(2 * time.Second):
					t.Fatalf("event %d not handled", i)
				}
			}

			if got := len(agent.World().Bombs()); got != tc.wantBombs {
				t.Errorf("bombs = %d, want %d", got, tc.wantBombs)
			}
			if tc.exhausted {
				select {
				case extra := <-conn.outbound:
					t.Errorf("throttled action was sent: %s", extra)
				case <-time.After(100 * time.Millisecond):
				}
				return
			}
			if got, want := recv(t, conn), `{"type":"control","data":{"action":"b"}}`; got != want {
				t.Errorf("control = %s, want %s", got, want)
			}
		})
	}
}
