package core

import (
	"strings"
	"time"
)

// Bomb 炸弹，位置为整数格子坐标
type Bomb struct {
	ID      string
	OwnerID string
	Pos     GridPos

	// Countdown 剩余 tick 数，已减去校准偏移，可能为小数或负数
	Countdown     float64
	Power         int
	ExplodingSoon bool

	// 被踢动时的运动信息
	IsMoving         bool
	KickerID         string
	MoveDirection    string
	MoveDistanceLeft float64

	// 本地预测炸弹的放置时间，服务器下发的炸弹为零值
	PredictedAt time.Time
}

// Predicted 是否为本地预测的炸弹
func (b *Bomb) Predicted() bool {
	return !b.PredictedAt.IsZero()
}

// GetExplosionCells 炸弹爆炸覆盖的格子
func (b *Bomb) GetExplosionCells(gameMap *GameMap) []BlastCell {
	return NewExplosion(b).CalculateExplosionCells(gameMap)
}

// ItemType 道具类型
type ItemType int

const (
	ItemUnknown ItemType = iota
	ItemExtraBomb
	ItemExtraPower
	ItemExtraSpeed
)

func (t ItemType) String() string {
	switch t {
	case ItemExtraBomb:
		return "extra_bomb"
	case ItemExtraPower:
		return "extra_power"
	case ItemExtraSpeed:
		return "extra_speed"
	}
	return "unknown"
}

// ParseItemType 宽松解析服务器的道具类型名
func ParseItemType(s string) ItemType {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	switch key {
	case "extrabomb", "bomb", "bombup", "b", "1":
		return ItemExtraBomb
	case "extrapower", "power", "fire", "flame", "p", "2":
		return ItemExtraPower
	case "extraspeed", "speed", "skate", "s", "3":
		return ItemExtraSpeed
	}
	return ItemUnknown
}

// Item 地图上的道具
type Item struct {
	ID   string
	Type ItemType
	Pos  GridPos
}
