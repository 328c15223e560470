package ai

import (
	"math"
	"sort"

	"bomberbot/pkg/ai/bt"
	"bomberbot/pkg/core"
)

// condCanPlaceBomb 还有炸弹额度且脚下没有炸弹
func condCanPlaceBomb(bb bt.Blackboard) bool {
	return bb.(*Blackboard).CanPlaceBomb()
}

// actAttack 敌人与自己同行或同列且在 power+1 以内，放炸弹后能逃生则放炸弹。
// 由 condCanPlaceBomb 守卫。
func actAttack(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)

	reach := board.bombPower() + 1
	inRange := false
	for _, enemy := range board.Enemies() {
		ep := enemy.GetGridPosition()
		if ep.GridX != board.Pos.GridX && ep.GridY != board.Pos.GridY {
			continue
		}
		if board.Pos.Manhattan(ep) <= reach {
			inRange = true
			break
		}
	}
	if !inRange || !board.EscapeVerified() {
		return bt.StatusFailure
	}
	return board.act(core.ActionBomb)
}

// actDemolish 紧邻砖块时放炸弹；否则在周围没有危险时走向最近的砖块
func actDemolish(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	m := board.World.Map

	if board.CanPlaceBomb() {
		for _, d := range core.Directions {
			next := board.Pos.Add(d)
			if m.GetTile(next.GridX, next.GridY) != core.TileBrick {
				continue
			}
			// 已经在爆炸范围内的砖块不用再炸
			if !board.Path.IsSafe(next) {
				continue
			}
			if board.EscapeVerified() {
				return board.act(core.ActionBomb)
			}
			break
		}
	}

	if !areaHazardFree(board, board.Config.DemolishSafeRadius) {
		return bt.StatusFailure
	}

	bricks := bricksByDistance(m, board.Pos, math.MaxInt)
	limit := board.Config.DemolishCandidates
	if limit <= 0 {
		limit = 1
	}
	for i, brick := range bricks {
		if i >= limit {
			break
		}
		path, ok := board.Path.FindPath(board.Pos, brick, PathOptions{AvoidDanger: true, AllowBlockedGoal: true})
		if !ok {
			continue
		}
		if step, ok := board.SafeStep(path); ok {
			target := brick
			board.Target = &target
			return board.act(step)
		}
	}
	return bt.StatusFailure
}

// actHunt 找最近的敌人，走向"夹在中间"的砖块；没有合适的砖块就直接走向敌人
func actHunt(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)

	var enemy *core.Player
	bestDist := math.MaxInt
	for _, e := range board.Enemies() {
		if d := board.Pos.Manhattan(e.GetGridPosition()); d < bestDist {
			bestDist = d
			enemy = e
		}
	}
	if enemy == nil {
		return bt.StatusFailure
	}
	enemyPos := enemy.GetGridPosition()

	bricks := bricksByDistance(board.World.Map, board.Pos, board.Config.HuntBrickCap)
	sort.SliceStable(bricks, func(i, j int) bool {
		return board.Pos.Manhattan(bricks[i])+bricks[i].Manhattan(enemyPos) <
			board.Pos.Manhattan(bricks[j])+bricks[j].Manhattan(enemyPos)
	})
	if len(bricks) > 0 {
		brick := bricks[0]
		path, ok := board.Path.FindPath(board.Pos, brick, PathOptions{AvoidDanger: true, AllowBlockedGoal: true})
		if ok {
			if step, ok := board.SafeStep(path); ok {
				board.Target = &brick
				return board.act(step)
			}
		}
	}

	path, ok := board.Path.FindPath(board.Pos, enemyPos, PathOptions{AvoidDanger: true})
	if !ok {
		return bt.StatusFailure
	}
	step, ok := board.SafeStep(path)
	if !ok {
		return bt.StatusFailure
	}
	board.Target = &enemyPos
	return board.act(step)
}

// areaHazardFree 半径内（曼哈顿）所有格子危险值为 0
func areaHazardFree(board *Blackboard, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if absInt(dx)+absInt(dy) > radius {
				continue
			}
			x, y := board.Pos.GridX+dx, board.Pos.GridY+dy
			if !board.World.Map.InBounds(x, y) {
				continue
			}
			if !board.Danger.HazardFree(x, y) {
				return false
			}
		}
	}
	return true
}

// bricksByDistance 距离不超过 maxDist 的砖块，按曼哈顿距离升序，同距离按扫描顺序
func bricksByDistance(m *core.GameMap, from core.GridPos, maxDist int) []core.GridPos {
	var bricks []core.GridPos
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.GetTile(x, y) != core.TileBrick {
				continue
			}
			p := core.GridPos{GridX: x, GridY: y}
			if from.Manhattan(p) <= maxDist {
				bricks = append(bricks, p)
			}
		}
	}
	sort.SliceStable(bricks, func(i, j int) bool {
		return from.Manhattan(bricks[i]) < from.Manhattan(bricks[j])
	})
	return bricks
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
