package core

import (
	"time"

	"github.com/google/uuid"
)

// World 本地维护的权威状态副本，只由决策循环读写
type World struct {
	Map *GameMap

	players map[string]*Player
	order   []string // 玩家首次出现的顺序，保证遍历确定
	bombs   []Bomb
	items   []Item

	// 本地预测的炸弹，服务器回显或超时后丢弃
	predicted []Bomb
	grace     time.Duration
	now       func() time.Time
}

// NewWorld 创建空状态
func NewWorld() *World {
	return &World{
		players: make(map[string]*Player),
		grace:   PredictionGrace,
		now:     time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (w *World) SetClock(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

// SetPredictionGrace 设置预测炸弹的保留时间
func (w *World) SetPredictionGrace(d time.Duration) {
	w.grace = d
}

// ApplyFullState 整体替换地图、玩家、炸弹和道具
func (w *World) ApplyFullState(s *Snapshot) {
	if s == nil {
		return
	}
	if s.Map != nil {
		w.Map = s.Map.Clone()
	}

	w.players = make(map[string]*Player, len(s.Players))
	w.order = w.order[:0]
	for _, u := range s.Players {
		w.upsertPlayer(u)
	}

	w.bombs = append(make([]Bomb, 0, len(s.Bombs)), s.Bombs...)
	w.items = append(make([]Item, 0, len(s.Items)), s.Items...)
	w.reconcilePredictions()
}

// ApplyDelta 合并增量：砖块 -> 玩家 -> 炸弹 -> 道具
func (w *World) ApplyDelta(d *Delta) {
	if d == nil {
		return
	}

	if w.Map != nil {
		for _, pos := range d.DestroyedBricks {
			w.Map.SetTile(pos.GridX, pos.GridY, TileEmpty)
		}
	}

	for _, u := range d.Players {
		w.upsertPlayer(u)
	}

	if d.Bombs != nil {
		w.bombs = append(make([]Bomb, 0, len(d.Bombs)), d.Bombs...)
		w.reconcilePredictions()
	}

	if d.Items != nil {
		w.items = append(make([]Item, 0, len(d.Items)), d.Items...)
	}
}

func (w *World) upsertPlayer(u PlayerUpdate) {
	if existing, ok := w.players[u.ID]; ok {
		existing.Merge(u)
		return
	}
	w.players[u.ID] = NewPlayer(u)
	w.order = append(w.order, u.ID)
}

// PredictBomb 记录一个本地预测的炸弹，返回该记录
func (w *World) PredictBomb(ownerID string, pos GridPos, power int) Bomb {
	b := Bomb{
		ID:          "predicted-" + uuid.NewString(),
		OwnerID:     ownerID,
		Pos:         pos,
		Countdown:   PredictedFuse,
		Power:       power,
		PredictedAt: w.now(),
	}
	w.predicted = append(w.predicted, b)
	return b
}

// reconcilePredictions 丢弃已被服务器回显或已超时的预测
func (w *World) reconcilePredictions() {
	if len(w.predicted) == 0 {
		return
	}
	now := w.now()
	kept := w.predicted[:0]
	for _, p := range w.predicted {
		if now.Sub(p.PredictedAt) >= w.grace {
			continue
		}
		if w.serverBombAt(p.Pos) {
			continue
		}
		kept = append(kept, p)
	}
	w.predicted = kept
}

func (w *World) serverBombAt(pos GridPos) bool {
	for i := range w.bombs {
		if w.bombs[i].Pos == pos {
			return true
		}
	}
	return false
}

// Bombs 当前炸弹视图：仍在宽限期内的预测炸弹在前，服务器炸弹在后
func (w *World) Bombs() []Bomb {
	now := w.now()
	out := make([]Bomb, 0, len(w.predicted)+len(w.bombs))
	for _, p := range w.predicted {
		if now.Sub(p.PredictedAt) < w.grace && !w.serverBombAt(p.Pos) {
			out = append(out, p)
		}
	}
	return append(out, w.bombs...)
}

// ServerBombs 仅服务器下发的炸弹
func (w *World) ServerBombs() []Bomb {
	return w.bombs
}

// Items 当前道具
func (w *World) Items() []Item {
	return w.items
}

// Player 按 ID 查找玩家
func (w *World) Player(id string) *Player {
	return w.players[id]
}

// Players 按首次出现顺序返回所有玩家
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.players[id])
	}
	return out
}

// Reset 清空全部状态，供下一局复用
func (w *World) Reset() {
	w.Map = nil
	w.players = make(map[string]*Player)
	w.order = nil
	w.bombs = nil
	w.items = nil
	w.predicted = nil
}
