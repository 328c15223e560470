package core

// Action 单字符动作，与服务器的 control 指令一致
type Action string

const (
	ActionNone  Action = ""
	ActionUp    Action = "u"
	ActionDown  Action = "d"
	ActionLeft  Action = "l"
	ActionRight Action = "r"
	ActionBomb  Action = "b"
	ActionKick  Action = "k"
)

// DefaultAction 缺少地图或找不到自己时的惰性动作
const DefaultAction = ActionUp

// IsMove 是否为移动动作
func (a Action) IsMove() bool {
	switch a {
	case ActionUp, ActionDown, ActionLeft, ActionRight:
		return true
	}
	return false
}

// Valid 是否属于动作字母表
func (a Action) Valid() bool {
	return a.IsMove() || a == ActionBomb || a == ActionKick
}

// Delta 移动动作对应的格子偏移
func (a Action) Delta() (GridPos, bool) {
	switch a {
	case ActionUp:
		return Directions[0], true
	case ActionDown:
		return Directions[1], true
	case ActionLeft:
		return Directions[2], true
	case ActionRight:
		return Directions[3], true
	}
	return GridPos{}, false
}

// ActionToward 从 from 走到相邻格子 to 的动作，优先横向距离大的轴
func ActionToward(from, to GridPos) Action {
	dx := to.GridX - from.GridX
	dy := to.GridY - from.GridY
	if absInt(dx) > absInt(dy) {
		if dx > 0 {
			return ActionRight
		}
		return ActionLeft
	}
	if dy > 0 {
		return ActionDown
	}
	if dy < 0 {
		return ActionUp
	}
	return ActionNone
}

// DirectionActions 与 Directions 一一对应
var DirectionActions = [4]Action{ActionUp, ActionDown, ActionLeft, ActionRight}

// DecisionKind 决策输出的形态
type DecisionKind int

const (
	DecisionControl DecisionKind = iota // 存活时的单步动作
	DecisionGhost                       // 死亡后的幽灵目标坐标
)

// Decision 每个 tick 的输出
type Decision struct {
	Kind   DecisionKind
	Action Action
	Target GridPos
}

// Control 构造存活动作
func Control(a Action) Decision {
	return Decision{Kind: DecisionControl, Action: a}
}

// Ghost 构造幽灵目标
func Ghost(target GridPos) Decision {
	return Decision{Kind: DecisionGhost, Target: target}
}
