package core

import "time"

// 线路数据换算
const (
	// PositionScale 玩家坐标在线路上放大了 100 倍
	PositionScale = 100.0
	// CountdownOffset 服务器倒计时的校准偏移
	CountdownOffset = 2.88
)

// 炸弹预测
const (
	// PredictionGrace 本地预测炸弹的保留时间，约 160 个服务器 tick
	PredictionGrace = 500 * time.Millisecond
	// PredictedFuse 本地预测炸弹使用的倒计时
	PredictedFuse = 150.0
)

// 幽灵模式下没有任何坐标可参考时的默认目标
const (
	GhostFallbackX = 5
	GhostFallbackY = 7
)
