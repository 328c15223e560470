package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// 消息类型
const (
	TypeInitialState      = "initial_state"
	TypeTickDelta         = "tick_delta"
	TypeTick              = "tick"
	TypeBombPlaced        = "bomb_placed"
	TypeBombExplodingSoon = "bomb_exploding_soon"
	TypePlayerDied        = "player_died"
	TypeGameOver          = "game_over"
	TypeJoinSuccess       = "join_success"

	TypeJoinGame     = "join_game"
	TypeControl      = "control"
	TypeControlGhost = "control_ghost"
)

// IsGameEvent 需要交给决策核心的消息
func IsGameEvent(t string) bool {
	switch t {
	case TypeTick, TypeInitialState, TypeTickDelta, TypeBombPlaced,
		TypeBombExplodingSoon, TypePlayerDied, TypeGameOver:
		return true
	}
	return false
}

// FlexString 兼容字符串、数字和布尔值的字段（ID、方向等）
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = FlexString(n.String())
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = FlexString(strconv.FormatBool(v))
	return nil
}

// WirePos 坐标。玩家坐标放大了 100 倍，炸弹、道具和砖块是格子坐标。
type WirePos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WirePlayer 玩家，短字段名，增量消息中每个字段都可能缺失
type WirePlayer struct {
	ID              FlexString  `json:"id"`
	Name            *string     `json:"n,omitempty"`
	Direction       *FlexString `json:"d,omitempty"`
	Pos             *WirePos    `json:"p,omitempty"`
	Status          *string     `json:"s,omitempty"`
	Invincible      *bool       `json:"iv,omitempty"`
	InvincibleTicks *float64    `json:"ivt,omitempty"`
	Speed           *float64    `json:"sp,omitempty"`
	BombLimit       *float64    `json:"bl,omitempty"`
	BombsPlaced     *float64    `json:"bp,omitempty"`
	BombPower       *float64    `json:"pow,omitempty"`
	Score           *float64    `json:"sc,omitempty"`
	TeamID          *FlexString `json:"tid,omitempty"`
}

// WireBomb 炸弹
type WireBomb struct {
	ID               FlexString `json:"id"`
	Owner            FlexString `json:"o"`
	Pos              WirePos    `json:"p"`
	Countdown        float64    `json:"c"`
	Power            float64    `json:"pow"`
	ExplodingSoon    bool       `json:"es"`
	IsMoving         bool       `json:"imv"`
	KickerID         FlexString `json:"kid"`
	MoveDirection    FlexString `json:"md"`
	MoveDistanceLeft float64    `json:"mdl"`
}

// WireItem 道具
type WireItem struct {
	ID   FlexString `json:"id"`
	Type FlexString `json:"t"`
	Pos  WirePos    `json:"p"`
}

// WireMap 地图，tiles[y][x]
type WireMap struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Tiles  [][]int `json:"tiles"`
}

// ServerMessage 服务器下发的消息。
// 切片为 nil 表示字段缺失，空数组解码为非 nil 的空切片。
type ServerMessage struct {
	Type            string          `json:"type"`
	Map             *WireMap        `json:"map,omitempty"`
	Players         []WirePlayer    `json:"players,omitempty"`
	Bombs           []WireBomb      `json:"bombs,omitempty"`
	Items           []WireItem      `json:"items,omitempty"`
	DestroyedBricks []WirePos       `json:"destroyedBricks,omitempty"`
	WinnerID        FlexString      `json:"winnerId,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// ClientMessage 发往服务器的消息
type ClientMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// JoinGame 加入游戏
type JoinGame struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	Role       string `json:"role"`
	PlayerName string `json:"playerName"`
	TeamID     string `json:"teamId"`
	TeamName   string `json:"teamName"`
	Token      string `json:"token,omitempty"`
}

type controlData struct {
	Action string `json:"action"`
}

// GhostTarget 幽灵目标坐标
type GhostTarget struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type controlGhostData struct {
	Action GhostTarget `json:"action"`
}
