package client

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bomberbot/pkg/protocol"
)

const (
	MaxPacketSize = 1 << 20          // 最大消息大小，initial_state 带整张地图
	readTimeout   = 30 * time.Second // 读取超时，等待开局时服务器可能很久不发消息
	writeTimeout  = 1 * time.Second  // 写入超时
)

var (
	ErrPacketTooLarge = errors.New("消息过大")
	ErrSendQueueFull  = errors.New("发送队列满")
)

// Conn 一条到服务器的消息连接，收发的都是 JSON 消息。
// 允许一个协程读、一个协程写同时进行。
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// ========== WebSocket ==========

type wsConn struct {
	ws *websocket.Conn
}

func newWSConn(ws *websocket.Conn) *wsConn {
	ws.SetReadLimit(MaxPacketSize)
	return &wsConn{ws: ws}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// ========== TCP / KCP ==========

// framedConn 4 字节大端长度前缀 + google.protobuf.Struct 编码的消息体
type framedConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func newFramedConn(conn net.Conn) *framedConn {
	return &framedConn{conn: conn}
}

func (c *framedConn) ReadMessage() ([]byte, error) {
	for {
		// 读取消息长度（4 字节）
		var length uint32
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		if err := binary.Read(c.conn, binary.BigEndian, &length); err != nil {
			return nil, err
		}

		if length > MaxPacketSize {
			return nil, fmt.Errorf("%w (%d bytes)", ErrPacketTooLarge, length)
		}
		// 空消息直接跳过
		if length == 0 {
			continue
		}

		payload := make([]byte, length)
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return nil, fmt.Errorf("读取数据失败: %w", err)
		}
		return protocol.UnpackStruct(payload)
	}
}

func (c *framedConn) WriteMessage(data []byte) error {
	payload, err := protocol.PackStruct(data)
	if err != nil {
		return err
	}
	if len(payload) > MaxPacketSize {
		return fmt.Errorf("%w (%d bytes)", ErrPacketTooLarge, len(payload))
	}

	// 长度和消息体一次写出
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err = c.conn.Write(buf)
	return err
}

func (c *framedConn) Close() error {
	return c.conn.Close()
}
