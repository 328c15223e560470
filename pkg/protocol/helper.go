package protocol

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"bomberbot/pkg/core"
)

// ========== 辅助构造方法 ==========

// NewJoinGame 构造加入游戏消息，Role 为空时按 player 处理
func NewJoinGame(j JoinGame) ([]byte, error) {
	if j.Role == "" {
		j.Role = "player"
	}
	return json.Marshal(ClientMessage{Type: TypeJoinGame, Data: j})
}

// NewControl 构造单步动作消息
func NewControl(a core.Action) ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("非法动作: %q", string(a))
	}
	return json.Marshal(ClientMessage{Type: TypeControl, Data: controlData{Action: string(a)}})
}

// NewControlGhost 构造幽灵目标消息
func NewControlGhost(p core.GridPos) ([]byte, error) {
	return json.Marshal(ClientMessage{
		Type: TypeControlGhost,
		Data: controlGhostData{Action: GhostTarget{X: p.GridX, Y: p.GridY}},
	})
}

// EncodeDecision 按决策形态选择消息
func EncodeDecision(d core.Decision) ([]byte, error) {
	switch d.Kind {
	case core.DecisionControl:
		return NewControl(d.Action)
	case core.DecisionGhost:
		return NewControlGhost(d.Target)
	}
	return nil, fmt.Errorf("未知决策类型: %d", d.Kind)
}

// ========== 二进制帧 ==========

// PackStruct 把 JSON 消息转成 google.protobuf.Struct 的二进制编码，供 tcp/kcp 传输
func PackStruct(jsonMsg []byte) ([]byte, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(jsonMsg, s); err != nil {
		return nil, fmt.Errorf("JSON 转 Struct 失败: %w", err)
	}
	return proto.Marshal(s)
}

// UnpackStruct PackStruct 的逆过程
func UnpackStruct(payload []byte) ([]byte, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(payload, s); err != nil {
		return nil, fmt.Errorf("解析 Struct 失败: %w", err)
	}
	return protojson.Marshal(s)
}
