// Package replay 以 msgpack 录制服务器消息，供离线回放调试策略。
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame 一条录制的消息
type Frame struct {
	At   int64  `msgpack:"at"` // 收到时间，Unix 毫秒
	Data []byte `msgpack:"data"`
}

// Time 收到时间
func (f Frame) Time() time.Time {
	return time.UnixMilli(f.At)
}

// Recorder 顺序写入 Frame，可并发调用
type Recorder struct {
	mu  sync.Mutex
	buf *bufio.Writer
	enc *msgpack.Encoder
	c   io.Closer

	now func() time.Time
}

// NewRecorder 写入 w
func NewRecorder(w io.Writer) *Recorder {
	buf := bufio.NewWriter(w)
	return &Recorder{
		buf: buf,
		enc: msgpack.NewEncoder(buf),
		now: time.Now,
	}
}

// CreateFile 新建录制文件
func CreateFile(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("创建录制文件失败: %w", err)
	}
	r := NewRecorder(f)
	r.c = f
	return r, nil
}

// Record 记录一条消息
func (r *Recorder) Record(data []byte) error {
	return r.RecordFrame(Frame{At: r.now().UnixMilli(), Data: data})
}

// RecordFrame 记录一条带时间的消息
func (r *Recorder) RecordFrame(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(&f); err != nil {
		return err
	}
	// 每帧落盘，进程被杀时也能保留大部分录像
	return r.buf.Flush()
}

// Close 刷新缓冲并关闭底层文件
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.buf.Flush()
	if r.c != nil {
		err = errors.Join(err, r.c.Close())
	}
	return err
}

// Reader 顺序读取 Frame
type Reader struct {
	dec *msgpack.Decoder
	c   io.Closer
}

// NewReader 从 r 读取
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(bufio.NewReader(r))}
}

// OpenFile 打开录制文件
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开录制文件失败: %w", err)
	}
	r := NewReader(f)
	r.c = f
	return r, nil
}

// Next 读取下一帧，结束时返回 io.EOF
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("解析录制帧失败: %w", err)
	}
	return f, nil
}

// Close 关闭底层文件
func (r *Reader) Close() error {
	if r.c != nil {
		return r.c.Close()
	}
	return nil
}
