package ai

import (
	"math/rand"

	"bomberbot/pkg/ai/bt"
	"bomberbot/pkg/core"
)

// Memory 跨 tick 保留的记忆，每个控制器一份
type Memory struct {
	LastAction core.Action

	// 解困两阶段：第一拍转向炸弹并置位，第二拍踢
	UnstickArmed bool

	// 游荡惯性：减少抖动
	ExploreDir    int // Directions 下标，-1 表示无
	ExploreFrames int
}

func (m *Memory) Reset() {
	*m = Memory{ExploreDir: -1}
}

// Blackboard 单个 tick 的决策上下文
type Blackboard struct {
	World  *core.World
	Self   *core.Player
	Pos    core.GridPos
	Bombs  []core.Bomb
	Danger *DangerField
	Path   *Pathfinder
	Config *AIConfig
	RNG    *rand.Rand
	Memory *Memory

	NextAction core.Action
	Target     *core.GridPos
}

func (bb *Blackboard) ResetFrame(world *core.World, self *core.Player, bombs []core.Bomb) {
	bb.World = world
	bb.Self = self
	bb.Pos = self.GetGridPosition()
	bb.Bombs = bombs
	bb.NextAction = core.ActionNone
	bb.Target = nil
	// 注意：Memory 不在这里重置，保持跨帧连续性
}

func (bb *Blackboard) AsBT() bt.Blackboard {
	return bb
}

// Enemies 存活的敌方玩家
func (bb *Blackboard) Enemies() []*core.Player {
	var out []*core.Player
	for _, p := range bb.World.Players() {
		if p.ID == bb.Self.ID || p.SameTeam(bb.Self) || !p.Alive() || !p.HasPos {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Teammates 同队的其他玩家（不区分状态）
func (bb *Blackboard) Teammates() []*core.Player {
	return teammatesOf(bb.World, bb.Self)
}

func teammatesOf(world *core.World, self *core.Player) []*core.Player {
	var out []*core.Player
	for _, p := range world.Players() {
		if p.ID == self.ID || !p.SameTeam(self) || !p.HasPos {
			continue
		}
		out = append(out, p)
	}
	return out
}

// OwnBombs 自己场上的炸弹数，包括还没被服务器回显的预测炸弹
func (bb *Blackboard) OwnBombs() int {
	n := 0
	for _, b := range bb.Bombs {
		if b.OwnerID == bb.Self.ID {
			n++
		}
	}
	if bb.Self.BombsPlaced > n {
		n = bb.Self.BombsPlaced
	}
	return n
}

// CanPlaceBomb 还有炸弹额度且脚下没有炸弹
func (bb *Blackboard) CanPlaceBomb() bool {
	return bb.OwnBombs() < bb.Self.BombLimit && !bb.Path.HasBomb(bb.Pos)
}

// EscapeVerified 在脚下放炸弹后仍有逃生路线
func (bb *Blackboard) EscapeVerified() bool {
	return bb.Path.CanEscapeAfterPlacement(bb.Pos, bb.bombPower(), bb.Config.SimulatedFuse, bb.Config.BombEscapeHops)
}

func (bb *Blackboard) bombPower() int {
	if bb.Self.BombPower < 1 {
		return 1
	}
	return bb.Self.BombPower
}

// SafeStep 路径的第一步可通行且安全时返回对应动作
func (bb *Blackboard) SafeStep(path []core.GridPos) (core.Action, bool) {
	if len(path) < 2 {
		return core.ActionNone, false
	}
	next := path[1]
	if !bb.Path.IsWalkable(next) || !bb.Path.IsSafe(next) {
		return core.ActionNone, false
	}
	return core.ActionToward(bb.Pos, next), true
}

func (bb *Blackboard) act(a core.Action) bt.Status {
	bb.NextAction = a
	return bt.StatusSuccess
}
