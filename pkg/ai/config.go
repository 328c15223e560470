package ai

import (
	"time"

	"bomberbot/pkg/core"
)

// AIConfig 定义 AI 的行为参数
type AIConfig struct {
	// SafeThreshold 危险值低于该阈值的格子视为安全
	SafeThreshold float64

	// 危险值刻度：倒计时越小，单臂危险值越接近 HazardCeiling
	HazardBase     float64
	HazardCeiling  float64
	FuseReference  float64 // 倒计时归一化参考值
	SimulatedFuse  float64 // 模拟放置炸弹时使用的倒计时
	PathNodeLimit  int     // A* 最多展开的节点数
	EscapeHops     int     // 逃生时 BFS 的最大步数
	BombEscapeHops int     // 放炸弹前验证逃生路线的最大步数

	ItemRadius         int // 收集道具的最大曼哈顿距离
	DemolishSafeRadius int // 主动寻砖前要求无危险的半径
	DemolishCandidates int // 寻砖时尝试的最近砖块数量
	HuntBrickCap       int // 追击时候选砖块离自己的最大距离

	// ExploreMomentum 游荡时同一方向最多保持的 tick 数，0 表示每次重新随机
	ExploreMomentum int

	// 幽灵模式
	GhostTether      int // 与最近队友的最大距离，超过则回靠
	GhostEnemyRadius int // 优先附身的敌人半径
	GhostItemRadius  int // 优先拾取的道具半径

	PredictionGrace time.Duration
}

// 预设配置：普通
var AIConfigNormal = AIConfig{
	SafeThreshold:      0.5,
	HazardBase:         1.0,
	HazardCeiling:      2.0,
	FuseReference:      150,
	SimulatedFuse:      core.PredictedFuse,
	PathNodeLimit:      1024,
	EscapeHops:         12,
	BombEscapeHops:     4,
	ItemRadius:         2,
	DemolishSafeRadius: 3,
	DemolishCandidates: 5,
	HuntBrickCap:       10,
	ExploreMomentum:    3,
	GhostTether:        6,
	GhostEnemyRadius:   3,
	GhostItemRadius:    8,
	PredictionGrace:    core.PredictionGrace,
}

// 预设配置：激进，收集和追击范围更大，放弃游荡惯性
var AIConfigAggressive = AIConfig{
	SafeThreshold:      0.5,
	HazardBase:         1.0,
	HazardCeiling:      2.0,
	FuseReference:      150,
	SimulatedFuse:      core.PredictedFuse,
	PathNodeLimit:      2048,
	EscapeHops:         12,
	BombEscapeHops:     5,
	ItemRadius:         4,
	DemolishSafeRadius: 2,
	DemolishCandidates: 8,
	HuntBrickCap:       14,
	ExploreMomentum:    0,
	GhostTether:        6,
	GhostEnemyRadius:   5,
	GhostItemRadius:    8,
	PredictionGrace:    core.PredictionGrace,
}

// ConfigByName 按名字取预设，未知名字返回 false
func ConfigByName(name string) (AIConfig, bool) {
	switch name {
	case "", "normal":
		return AIConfigNormal, true
	case "aggressive":
		return AIConfigAggressive, true
	}
	return AIConfig{}, false
}
