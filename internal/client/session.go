package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"bomberbot/pkg/core"
	"bomberbot/pkg/protocol"
)

// Decider 决策核心，每条游戏事件最多给出一个决策。
// Observe 只应用状态，用于本 tick 的动作无法发送时。
type Decider interface {
	Process(ev core.Event) (core.Decision, bool)
	Observe(ev core.Event)
	Reset()
}

// Recorder 录制收到的原始消息
type Recorder interface {
	Record(data []byte) error
}

// SessionConfig 会话参数
type SessionConfig struct {
	Transport   string
	URL         string
	DialTimeout time.Duration

	Join      protocol.JoinGame
	JWTSecret string // 非空时为 join_game 附带 token
	TokenTTL  time.Duration

	MaxActionsPerSecond float64 // 0 表示不限，超出的动作直接丢弃
	ReconnectDelay      time.Duration

	Recorder Recorder
}

// Session 一次连接上的 收 -> 决策 -> 发 流水线。
// 决策只在一个协程里进行，决策核心不需要加锁。
type Session struct {
	cfg   SessionConfig
	agent Decider
	log   *zap.SugaredLogger

	// DialFunc 建立连接，测试时可替换
	DialFunc func(ctx context.Context) (Conn, error)

	limiter *rate.Limiter
}

// NewSession 创建会话
func NewSession(cfg SessionConfig, agent Decider, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Session{
		cfg:   cfg,
		agent: agent,
		log:   log,
	}
	s.DialFunc = func(ctx context.Context) (Conn, error) {
		return Dial(ctx, cfg.Transport, cfg.URL, cfg.DialTimeout)
	}
	if cfg.MaxActionsPerSecond > 0 {
		burst := int(cfg.MaxActionsPerSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxActionsPerSecond), burst)
	}
	return s
}

// Run 连接、发送 join_game，然后运行到连接断开或 ctx 取消。
// ctx 取消时返回 nil。
func (s *Session) Run(ctx context.Context) error {
	conn, err := s.DialFunc(ctx)
	if err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}
	defer conn.Close()

	s.log.Infow("已连接到服务器", "url", s.cfg.URL, "transport", s.cfg.Transport)

	join, err := s.joinMessage()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(join); err != nil {
		return fmt.Errorf("发送加入请求失败: %w", err)
	}

	inbox := make(chan []byte, 256)
	sendChan := make(chan []byte, 64)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// 阻塞中的读写靠关闭连接退出
		<-ctx.Done()
		conn.Close()
		return nil
	})
	eg.Go(func() error {
		return s.receiveLoop(ctx, conn, inbox)
	})
	eg.Go(func() error {
		return s.decideLoop(ctx, inbox, sendChan)
	})
	eg.Go(func() error {
		return s.sendLoop(ctx, conn, sendChan)
	})

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunWithReconnect 断线后等待 ReconnectDelay 重连，直到 ctx 取消
func (s *Session) RunWithReconnect(ctx context.Context) error {
	for {
		err := s.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.log.Warnw("会话结束", "error", err, "retry_in", s.cfg.ReconnectDelay)
		}
		// 新连接会重新下发 initial_state
		s.agent.Reset()

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

func (s *Session) joinMessage() ([]byte, error) {
	join := s.cfg.Join
	if s.cfg.JWTSecret != "" {
		ttl := s.cfg.TokenTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		token, err := GenerateJoinToken(s.cfg.JWTSecret, join.GameID, join.TeamID, join.PlayerID, ttl)
		if err != nil {
			return nil, fmt.Errorf("生成 token 失败: %w", err)
		}
		join.Token = token
	}
	return protocol.NewJoinGame(join)
}

// receiveLoop 接收循环
func (s *Session) receiveLoop(ctx context.Context, conn Conn, inbox chan<- []byte) error {
	defer close(inbox)
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("读取消息失败: %w", err)
		}
		if s.cfg.Recorder != nil {
			if err := s.cfg.Recorder.Record(data); err != nil {
				s.log.Warnw("录制消息失败", "error", err)
			}
		}
		select {
		case inbox <- data:
		case <-ctx.Done():
			return nil
		}
	}
}

// decideLoop 逐条处理消息，前一条处理完之前不会处理下一条。
// 只有这个协程向 sendChan 写入。
func (s *Session) decideLoop(ctx context.Context, inbox <-chan []byte, sendChan chan<- []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-inbox:
			if !ok {
				return nil
			}
			s.handleMessage(data, sendChan)
		}
	}
}

// handleMessage 先确认动作能发出去再决策，发不出去的 tick 只更新状态
func (s *Session) handleMessage(data []byte, sendChan chan<- []byte) {
	msg, err := protocol.DecodeServerMessage(data)
	if err != nil {
		s.log.Warnw("解析消息失败", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeJoinSuccess:
		s.log.Infow("加入游戏成功", "player", s.cfg.Join.PlayerID)
		return
	case protocol.TypeGameOver:
		s.log.Infow("游戏结束", "winner", string(msg.WinnerID))
	}

	ev, ok := msg.Event()
	if !ok {
		s.log.Debugw("忽略消息", "type", msg.Type)
		return
	}

	if len(sendChan) == cap(sendChan) {
		s.log.Warnw("跳过决策", "error", ErrSendQueueFull)
		s.agent.Observe(ev)
		return
	}
	var res *rate.Reservation
	if s.limiter != nil {
		res = s.limiter.Reserve()
		if !res.OK() || res.Delay() > 0 {
			// 限流：本 tick 不决策，令牌归还
			res.Cancel()
			s.agent.Observe(ev)
			return
		}
	}

	decision, ok := s.agent.Process(ev)
	if !ok {
		if res != nil {
			res.Cancel()
		}
		return
	}

	out, err := protocol.EncodeDecision(decision)
	if err != nil {
		s.log.Errorw("编码动作失败", "error", err)
		return
	}
	// 上面已确认队列有空位
	sendChan <- out
}

// sendLoop 发送循环
func (s *Session) sendLoop(ctx context.Context, conn Conn, sendChan <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-sendChan:
			if err := conn.WriteMessage(data); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("发送数据失败: %w", err)
			}
		}
	}
}
