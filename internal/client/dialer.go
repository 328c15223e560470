package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	kcp "github.com/xtaci/kcp-go/v5"
)

var ErrUnsupportedTransport = errors.New("不支持的协议")

// Dial 按协议连接服务器。ws 使用完整 URL，tcp/kcp 接受 host:port 或带 scheme 的 URL。
func Dial(ctx context.Context, transport, rawURL string, timeout time.Duration) (Conn, error) {
	switch transport {
	case "", "ws":
		dialer := *websocket.DefaultDialer
		if timeout > 0 {
			dialer.HandshakeTimeout = timeout
		}
		ws, _, err := dialer.DialContext(ctx, rawURL, nil)
		if err != nil {
			return nil, err
		}
		return newWSConn(ws), nil

	case "tcp":
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", hostPort(rawURL))
		if err != nil {
			return nil, err
		}
		// 开启 TCP_NODELAY，禁用 Nagle 算法以减少延迟
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}
		return newFramedConn(conn), nil

	case "kcp":
		conn, err := kcp.DialWithOptions(hostPort(rawURL), nil, 0, 0)
		if err != nil {
			return nil, err
		}
		conn.SetStreamMode(true)
		return newFramedConn(conn), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTransport, transport)
	}
}

func hostPort(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
