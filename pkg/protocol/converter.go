package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"bomberbot/pkg/core"
)

var ErrUnknownMessage = errors.New("unknown message type")

// DecodeServerMessage 解析一条服务器 JSON 消息。
// 状态字段既可以在顶层，也可以包在 data 对象里。
func DecodeServerMessage(raw []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("解析消息失败: %w", err)
	}
	if len(msg.Data) > 0 && msg.Data[0] == '{' {
		typ := msg.Type
		data := msg.Data
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("解析 data 失败: %w", err)
		}
		if msg.Type == "" {
			msg.Type = typ
		}
	}
	if msg.Type == "" {
		return nil, ErrUnknownMessage
	}
	return &msg, nil
}

// Event 转换为决策核心的事件，非游戏事件返回 false
func (m *ServerMessage) Event() (core.Event, bool) {
	switch m.Type {
	case TypeInitialState:
		return core.Event{Kind: core.EventFullState, Snapshot: m.snapshot()}, true
	case TypeTickDelta:
		return core.Event{Kind: core.EventDelta, Delta: m.delta()}, true
	case TypeTick, TypeBombPlaced, TypeBombExplodingSoon, TypePlayerDied:
		return core.Event{Kind: core.EventTick}, true
	case TypeGameOver:
		return core.Event{Kind: core.EventGameOver, GameOver: &core.GameOverEvent{WinnerID: string(m.WinnerID)}}, true
	}
	return core.Event{}, false
}

func (m *ServerMessage) snapshot() *core.Snapshot {
	s := &core.Snapshot{
		Players: ToPlayerUpdates(m.Players),
		Bombs:   ToBombs(m.Bombs),
		Items:   ToItems(m.Items),
	}
	if m.Map != nil {
		s.Map = ToGameMap(m.Map)
	}
	// 全量状态里缺失的列表视为空
	if s.Bombs == nil {
		s.Bombs = []core.Bomb{}
	}
	if s.Items == nil {
		s.Items = []core.Item{}
	}
	return s
}

func (m *ServerMessage) delta() *core.Delta {
	d := &core.Delta{
		Players: ToPlayerUpdates(m.Players),
		Bombs:   ToBombs(m.Bombs),
		Items:   ToItems(m.Items),
	}
	if m.DestroyedBricks != nil {
		d.DestroyedBricks = make([]core.GridPos, 0, len(m.DestroyedBricks))
		for _, p := range m.DestroyedBricks {
			d.DestroyedBricks = append(d.DestroyedBricks, gridOf(p))
		}
	}
	return d
}

// ToGameMap 地图转换。tiles 缺失时按 width/height 生成空地图。
func ToGameMap(w *WireMap) *core.GameMap {
	if len(w.Tiles) == 0 {
		return core.NewGameMap(w.Width, w.Height)
	}
	return core.NewGameMapFromRows(w.Tiles)
}

// ToPlayerUpdates 保留 nil 与空切片的区别
func ToPlayerUpdates(src []WirePlayer) []core.PlayerUpdate {
	if src == nil {
		return nil
	}
	out := make([]core.PlayerUpdate, 0, len(src))
	for i := range src {
		out = append(out, ToPlayerUpdate(&src[i]))
	}
	return out
}

// ToPlayerUpdate 玩家坐标除以 100 还原为格子坐标
func ToPlayerUpdate(p *WirePlayer) core.PlayerUpdate {
	u := core.PlayerUpdate{
		ID:         string(p.ID),
		Name:       p.Name,
		Invincible: p.Invincible,
		Speed:      p.Speed,
	}
	if p.Direction != nil {
		d := string(*p.Direction)
		u.Direction = &d
	}
	if p.Pos != nil {
		x := p.Pos.X / core.PositionScale
		y := p.Pos.Y / core.PositionScale
		u.X, u.Y = &x, &y
	}
	if p.Status != nil {
		st := core.PlayerStatus(strings.ToLower(*p.Status))
		u.Status = &st
	}
	if p.TeamID != nil {
		tid := string(*p.TeamID)
		u.TeamID = &tid
	}
	u.InvincibleTicks = intPtr(p.InvincibleTicks)
	u.BombLimit = intPtr(p.BombLimit)
	u.BombsPlaced = intPtr(p.BombsPlaced)
	u.BombPower = intPtr(p.BombPower)
	u.Score = intPtr(p.Score)
	return u
}

// ToBombs 倒计时减去校准偏移
func ToBombs(src []WireBomb) []core.Bomb {
	if src == nil {
		return nil
	}
	out := make([]core.Bomb, 0, len(src))
	for _, b := range src {
		out = append(out, core.Bomb{
			ID:               string(b.ID),
			OwnerID:          string(b.Owner),
			Pos:              gridOf(b.Pos),
			Countdown:        b.Countdown - core.CountdownOffset,
			Power:            int(math.Round(b.Power)),
			ExplodingSoon:    b.ExplodingSoon,
			IsMoving:         b.IsMoving,
			KickerID:         string(b.KickerID),
			MoveDirection:    string(b.MoveDirection),
			MoveDistanceLeft: b.MoveDistanceLeft,
		})
	}
	return out
}

func ToItems(src []WireItem) []core.Item {
	if src == nil {
		return nil
	}
	out := make([]core.Item, 0, len(src))
	for _, it := range src {
		out = append(out, core.Item{
			ID:   string(it.ID),
			Type: core.ParseItemType(string(it.Type)),
			Pos:  gridOf(it.Pos),
		})
	}
	return out
}

func gridOf(p WirePos) core.GridPos {
	return core.GridPos{GridX: int(math.Round(p.X)), GridY: int(math.Round(p.Y))}
}

func intPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(math.Round(*f))
	return &v
}
