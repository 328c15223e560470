package ai

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"bomberbot/pkg/ai/bt"
	"bomberbot/pkg/core"
)

// 规则名，与行为树子节点顺序一致
const (
	RuleUnstick  = "unstick"
	RuleEscape   = "escape"
	RuleRescue   = "rescue"
	RuleAttack   = "attack"
	RuleCollect  = "collect"
	RuleDemolish = "demolish"
	RuleHunt     = "hunt"
	RuleExplore  = "explore"
)

// AIController 绑定一个玩家 ID，每收到一条状态消息产出一个决策。
// 只能被单个决策循环调用。
type AIController struct {
	PlayerID string

	config *AIConfig
	log    *zap.SugaredLogger
	rnd    *rand.Rand

	world      *core.World
	danger     *DangerField
	memory     Memory
	blackboard Blackboard
	tree       *bt.Selector
	ghost      GhostPolicy

	// LastRule 最近一次产出动作的规则，没有时为空
	LastRule string
}

// NewAIController 创建 AI 控制器，使用默认配置（普通）
func NewAIController(playerID string, log *zap.SugaredLogger) *AIController {
	return NewAIControllerWithConfig(playerID, &AIConfigNormal, log)
}

// NewAIControllerWithConfig 创建 AI 控制器，使用指定配置
func NewAIControllerWithConfig(playerID string, config *AIConfig, log *zap.SugaredLogger) *AIController {
	if config == nil {
		config = &AIConfigNormal
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(playerID))
	rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(h.Sum64())))

	c := &AIController{
		PlayerID: playerID,
		config:   config,
		log:      log,
		rnd:      rnd,
		world:    core.NewWorld(),
		danger:   NewDangerField(config),
	}
	c.world.SetPredictionGrace(config.PredictionGrace)
	c.memory.Reset()

	c.blackboard = Blackboard{
		Danger: c.danger,
		Config: config,
		RNG:    rnd,
		Memory: &c.memory,
	}

	c.tree = &bt.Selector{Children: []bt.Node{
		&bt.Action{Name: RuleUnstick, Do: actUnstick},
		&bt.Sequence{Name: RuleEscape, Children: []bt.Node{
			&bt.Condition{Check: condInDanger},
			&bt.Action{Name: RuleEscape, Do: actEscape},
		}},
		&bt.Action{Name: RuleRescue, Do: actRescue},
		&bt.Sequence{Name: RuleAttack, Children: []bt.Node{
			&bt.Condition{Check: condCanPlaceBomb},
			&bt.Action{Name: RuleAttack, Do: actAttack},
		}},
		&bt.Action{Name: RuleCollect, Do: actCollect},
		&bt.Action{Name: RuleDemolish, Do: actDemolish},
		&bt.Action{Name: RuleHunt, Do: actHunt},
		&bt.Action{Name: RuleExplore, Do: actExplore},
	}}
	c.ghost = GhostPolicy{Config: config, RNG: rnd}

	return c
}

// World 控制器持有的状态
func (c *AIController) World() *core.World {
	return c.world
}

// SetRand 替换随机源（测试用）
func (c *AIController) SetRand(r *rand.Rand) {
	c.rnd = r
	c.blackboard.RNG = r
	c.ghost.RNG = r
}

// Process 应用一条状态事件并给出决策。
// ok 为 false 表示本 tick 不发送任何指令。内部异常被吞掉并记录日志。
func (c *AIController) Process(ev core.Event) (d core.Decision, ok bool) {
	defer c.recoverTick(ev, func() { d, ok = core.Decision{}, false })

	if !c.apply(ev) {
		return core.Decision{}, false
	}
	return c.Decide()
}

// Observe 只应用状态，不做决策。
// 本 tick 的动作发不出去时使用，避免预测炸弹和解困记忆记下一个没发出的动作。
func (c *AIController) Observe(ev core.Event) {
	defer c.recoverTick(ev, func() {})
	c.apply(ev)
}

func (c *AIController) recoverTick(ev core.Event, onPanic func()) {
	if r := recover(); r != nil {
		c.log.Errorw("决策异常，本 tick 不出动作", "player", c.PlayerID, "event", ev.Kind.String(), "panic", fmt.Sprint(r))
		onPanic()
	}
}

// apply 更新状态，返回该事件是否需要决策
func (c *AIController) apply(ev core.Event) bool {
	switch ev.Kind {
	case core.EventFullState:
		c.world.ApplyFullState(ev.Snapshot)
	case core.EventDelta:
		c.world.ApplyDelta(ev.Delta)
	case core.EventGameOver:
		winner := ""
		if ev.GameOver != nil {
			winner = ev.GameOver.WinnerID
		}
		c.log.Infow("游戏结束", "player", c.PlayerID, "winner", winner)
		c.Reset()
		return false
	case core.EventTick:
	default:
		return false
	}
	return true
}

// Decide 基于当前状态决策
func (c *AIController) Decide() (core.Decision, bool) {
	self := c.world.Player(c.PlayerID)
	if self == nil {
		return core.Control(core.DefaultAction), true
	}

	// 死亡后输出幽灵目标，没有地图时也一样
	if self.Dead() {
		c.LastRule = "ghost"
		return core.Ghost(c.ghost.Target(c.world, self)), true
	}
	if c.world.Map == nil || !self.HasPos {
		return core.Control(core.DefaultAction), true
	}

	bombs := c.world.Bombs()
	c.danger.Update(c.world.Map, bombs)
	pf := NewPathfinder(c.world.Map, c.danger, bombs, c.config.PathNodeLimit)

	c.blackboard.ResetFrame(c.world, self, bombs)
	c.blackboard.Path = pf

	if c.tree.Tick(c.blackboard.AsBT()) == bt.StatusFailure || c.blackboard.NextAction == core.ActionNone {
		c.LastRule = ""
		return core.Decision{}, false
	}

	action := c.blackboard.NextAction
	c.LastRule = bt.NameOf(c.tree.Children[c.tree.Last])
	c.memory.LastAction = action

	if action == core.ActionBomb {
		c.world.PredictBomb(self.ID, c.blackboard.Pos, c.blackboard.bombPower())
	}

	c.log.Debugw("决策", "player", c.PlayerID, "rule", c.LastRule, "action", string(action), "pos", c.blackboard.Pos)
	return core.Control(action), true
}

// GetConfig 获取当前配置
func (c *AIController) GetConfig() *AIConfig {
	return c.config
}

// Reset 丢弃全部状态与记忆，供下一局复用
func (c *AIController) Reset() {
	c.world.Reset()
	c.memory.Reset()
	c.LastRule = ""
}
