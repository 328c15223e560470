package ai

import (
	"math"

	"bomberbot/pkg/core"
)

// DangerField 每个格子的危险值，按 y*Width+x 平铺。
// 多个炸弹覆盖同一格时取最大值，不累加。
type DangerField struct {
	Width, Height int
	Level         []float64

	cfg *AIConfig
}

// NewDangerField 创建与地图同尺寸的空危险场
func NewDangerField(cfg *AIConfig) *DangerField {
	if cfg == nil {
		cfg = &AIConfigNormal
	}
	return &DangerField{cfg: cfg}
}

// Update 按当前炸弹重新计算。
// 被踢动的炸弹只在其最后上报的位置计算。
func (df *DangerField) Update(m *core.GameMap, bombs []core.Bomb) {
	df.reset(m.Width, m.Height)
	for i := range bombs {
		df.AddBomb(m, &bombs[i])
	}
}

func (df *DangerField) reset(w, h int) {
	df.Width, df.Height = w, h
	if cap(df.Level) >= w*h {
		df.Level = df.Level[:w*h]
		for i := range df.Level {
			df.Level[i] = 0
		}
		return
	}
	df.Level = make([]float64, w*h)
}

// AddBomb 叠加一个炸弹的危险值
func (df *DangerField) AddBomb(m *core.GameMap, b *core.Bomb) {
	arm := df.armHazard(b)
	for _, cell := range b.GetExplosionCells(m) {
		if cell.GridX < 0 || cell.GridX >= df.Width || cell.GridY < 0 || cell.GridY >= df.Height {
			continue
		}
		v := arm
		if cell.Distance == 0 {
			v = 2 * arm
		}
		idx := cell.GridY*df.Width + cell.GridX
		if v > df.Level[idx] {
			df.Level[idx] = v
		}
	}
}

// armHazard 单臂危险值：base + (ceiling-base) * ref / (ref + countdown)。
// 倒计时越小越接近 ceiling，严格单调。
func (df *DangerField) armHazard(b *core.Bomb) float64 {
	return hazardForCountdown(df.cfg, b.Countdown, b.ExplodingSoon)
}

func hazardForCountdown(cfg *AIConfig, countdown float64, explodingSoon bool) float64 {
	if explodingSoon {
		return cfg.HazardCeiling
	}
	c := math.Max(countdown, 0)
	ref := cfg.FuseReference
	if ref <= 0 {
		ref = 1
	}
	return cfg.HazardBase + (cfg.HazardCeiling-cfg.HazardBase)*ref/(ref+c)
}

// Hazard 指定格子的危险值，越界视为最高危险
func (df *DangerField) Hazard(x, y int) float64 {
	if x < 0 || x >= df.Width || y < 0 || y >= df.Height {
		return math.Inf(1)
	}
	return df.Level[y*df.Width+x]
}

// IsSafe 危险值低于阈值
func (df *DangerField) IsSafe(x, y int) bool {
	return df.Hazard(x, y) < df.cfg.SafeThreshold
}

// InDanger 与 IsSafe 相反
func (df *DangerField) InDanger(x, y int) bool {
	return !df.IsSafe(x, y)
}

// HazardFree 危险值恰好为 0
func (df *DangerField) HazardFree(x, y int) bool {
	return df.Hazard(x, y) == 0
}

// Clone 深拷贝，用于模拟放置炸弹
func (df *DangerField) Clone() *DangerField {
	c := &DangerField{Width: df.Width, Height: df.Height, cfg: df.cfg}
	c.Level = make([]float64, len(df.Level))
	copy(c.Level, df.Level)
	return c
}
