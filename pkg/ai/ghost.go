package ai

import (
	"math"
	"math/rand"

	"bomberbot/pkg/core"
)

// GhostPolicy 死亡后的目标选择，只用曼哈顿距离，不看危险场也不寻路。
// 输出绝对目标坐标，由服务器负责移动幽灵。
type GhostPolicy struct {
	Config *AIConfig
	RNG    *rand.Rand
}

type nearest struct {
	pos  core.GridPos
	dist int
	ok   bool
}

func nearestPlayer(from core.GridPos, players []*core.Player, keep func(*core.Player) bool) nearest {
	best := nearest{dist: math.MaxInt}
	for _, p := range players {
		if !keep(p) {
			continue
		}
		pos := p.GetGridPosition()
		if d := from.Manhattan(pos); d < best.dist {
			best = nearest{pos: pos, dist: d, ok: true}
		}
	}
	return best
}

// Target 按优先级选出幽灵的目标
func (g *GhostPolicy) Target(world *core.World, self *core.Player) core.GridPos {
	from := core.GridPos{GridX: core.GhostFallbackX, GridY: core.GhostFallbackY}
	if self.HasPos {
		from = self.GetGridPosition()
	}

	mates := teammatesOf(world, self)
	var enemies []*core.Player
	for _, p := range world.Players() {
		if p.ID != self.ID && !p.SameTeam(self) && p.Alive() && p.HasPos {
			enemies = append(enemies, p)
		}
	}

	dying := nearestPlayer(from, mates, (*core.Player).Dying)
	if dying.ok {
		return dying.pos
	}

	livingMate := nearestPlayer(from, mates, (*core.Player).Alive)
	if livingMate.ok && livingMate.dist > g.Config.GhostTether {
		return livingMate.pos
	}

	enemy := nearestPlayer(from, enemies, func(*core.Player) bool { return true })
	if enemy.ok && enemy.dist <= g.Config.GhostEnemyRadius {
		return enemy.pos
	}

	item := nearest{dist: math.MaxInt}
	for _, it := range world.Items() {
		if d := from.Manhattan(it.Pos); d < item.dist {
			item = nearest{pos: it.Pos, dist: d, ok: true}
		}
	}
	if item.ok && item.dist <= g.Config.GhostItemRadius && (!enemy.ok || item.dist <= enemy.dist) {
		return item.pos
	}

	if enemy.ok {
		return enemy.pos
	}
	if livingMate.ok {
		return livingMate.pos
	}
	return g.randomInteriorCell(world.Map)
}

// randomInteriorCell 随机一个内圈空地
func (g *GhostPolicy) randomInteriorCell(m *core.GameMap) core.GridPos {
	fallback := core.GridPos{GridX: core.GhostFallbackX, GridY: core.GhostFallbackY}
	if m == nil {
		return fallback
	}
	var cells []core.GridPos
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			if m.GetTile(x, y) == core.TileEmpty {
				cells = append(cells, core.GridPos{GridX: x, GridY: y})
			}
		}
	}
	if len(cells) == 0 {
		return fallback
	}
	return cells[g.RNG.Intn(len(cells))]
}
