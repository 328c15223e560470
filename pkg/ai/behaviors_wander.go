package ai

import (
	"math"

	"bomberbot/pkg/ai/bt"
	"bomberbot/pkg/core"
)

// actCollect 收集半径内最近的安全道具，只在下一步也安全时才走
func actCollect(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)

	var target *core.Item
	bestDist := math.MaxInt
	items := board.World.Items()
	for i := range items {
		it := &items[i]
		d := board.Pos.Manhattan(it.Pos)
		if d == 0 || d > board.Config.ItemRadius {
			continue
		}
		if !board.Path.IsSafe(it.Pos) {
			continue
		}
		if d < bestDist {
			bestDist = d
			target = it
		}
	}
	if target == nil {
		return bt.StatusFailure
	}

	path, ok := board.Path.FindPath(board.Pos, target.Pos, PathOptions{AvoidDanger: true})
	if !ok {
		return bt.StatusFailure
	}
	step, ok := board.SafeStep(path)
	if !ok {
		return bt.StatusFailure
	}
	goal := target.Pos
	board.Target = &goal
	return board.act(step)
}

// actExplore 随机顺序尝试四个方向，取第一个可通行且安全的。
// 上一次的方向在 ExploreMomentum 个 tick 内优先保持。
func actExplore(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	mem := board.Memory

	ok := func(i int) bool {
		next := board.Pos.Add(core.Directions[i])
		return board.Path.IsWalkable(next) && board.Path.IsSafe(next)
	}

	if mem.ExploreDir >= 0 && mem.ExploreFrames < board.Config.ExploreMomentum && ok(mem.ExploreDir) {
		mem.ExploreFrames++
		return board.act(core.DirectionActions[mem.ExploreDir])
	}

	order := board.RNG.Perm(len(core.Directions))
	for _, i := range order {
		if !ok(i) {
			continue
		}
		// 重新选出的方向（即使与上次相同）重新计惯性
		mem.ExploreDir = i
		mem.ExploreFrames = 1
		return board.act(core.DirectionActions[i])
	}

	mem.ExploreDir = -1
	mem.ExploreFrames = 0
	return bt.StatusFailure
}
