package ai

import (
	"math"

	"bomberbot/pkg/ai/bt"
	"bomberbot/pkg/core"
)

// actUnstick 四面被墙、砖或炸弹封死且至少有一个炸弹时，
// 第一拍转向炸弹并置位，第二拍发出踢炸弹动作。
// 这里用向下取整的坐标判断所在格。
func actUnstick(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	mem := board.Memory

	if mem.UnstickArmed {
		mem.UnstickArmed = false
		return board.act(core.ActionKick)
	}

	pos := board.Self.FloorGridPosition()
	var bombDirs []core.Action
	for i, d := range core.Directions {
		next := pos.Add(d)
		hasBomb := board.Path.HasBomb(next)
		if board.World.Map.GetTile(next.GridX, next.GridY) == core.TileEmpty && !hasBomb {
			return bt.StatusFailure
		}
		if hasBomb {
			bombDirs = append(bombDirs, core.DirectionActions[i])
		}
	}
	if len(bombDirs) == 0 {
		return bt.StatusFailure
	}

	mem.UnstickArmed = true
	for _, a := range bombDirs {
		if a == mem.LastAction {
			return board.act(a)
		}
	}
	return board.act(bombDirs[0])
}

// condInDanger 当前格不安全
func condInDanger(bb bt.Blackboard) bool {
	board := bb.(*Blackboard)
	return !board.Path.IsSafe(board.Pos)
}

// actEscape 走向最近的安全格，由 condInDanger 守卫。
// 找不到路线时退而走向危险值最低的可通行邻格，不原地停留。
func actEscape(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)

	if safe, ok := board.Path.FindNearestSafeCell(board.Pos, board.Config.EscapeHops); ok {
		path, found := board.Path.FindPath(board.Pos, safe, PathOptions{AvoidDanger: true})
		if found && len(path) >= 2 {
			board.Target = &safe
			return board.act(core.ActionToward(board.Pos, path[1]))
		}
	}

	best := core.ActionNone
	bestHazard := math.Inf(1)
	for i, d := range core.Directions {
		next := board.Pos.Add(d)
		if !board.Path.IsWalkable(next) {
			continue
		}
		h := board.Danger.Hazard(next.GridX, next.GridY)
		if h < bestHazard {
			bestHazard = h
			best = core.DirectionActions[i]
		}
	}
	if best == core.ActionNone {
		return bt.StatusFailure
	}
	return board.act(best)
}

// actRescue 走向最近的濒死队友
func actRescue(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)

	var target *core.Player
	bestDist := math.MaxInt
	for _, mate := range board.Teammates() {
		if !mate.Dying() {
			continue
		}
		if d := board.Pos.Manhattan(mate.GetGridPosition()); d < bestDist {
			bestDist = d
			target = mate
		}
	}
	if target == nil {
		return bt.StatusFailure
	}

	goal := target.GetGridPosition()
	path, ok := board.Path.FindPath(board.Pos, goal, PathOptions{AvoidDanger: true})
	if !ok {
		return bt.StatusFailure
	}
	step, ok := board.SafeStep(path)
	if !ok {
		return bt.StatusFailure
	}
	board.Target = &goal
	return board.act(step)
}
