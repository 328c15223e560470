package core

// PlayerStatus 玩家状态
type PlayerStatus string

const (
	StatusAlive PlayerStatus = "alive"
	StatusDying PlayerStatus = "dying"
	StatusDead  PlayerStatus = "dead"
)

// Player 玩家，坐标为连续的格子坐标（支持格子内移动）
type Player struct {
	ID        string
	Name      string
	Direction string
	X, Y      float64
	HasPos    bool
	Status    PlayerStatus

	Invincible      bool
	InvincibleTicks int
	Speed           float64

	BombLimit   int
	BombsPlaced int
	BombPower   int
	Score       int
	TeamID      string
}

// PlayerUpdate 增量玩家数据，nil 字段表示本次未下发
type PlayerUpdate struct {
	ID              string
	Name            *string
	Direction       *string
	X, Y            *float64
	Status          *PlayerStatus
	Invincible      *bool
	InvincibleTicks *int
	Speed           *float64
	BombLimit       *int
	BombsPlaced     *int
	BombPower       *int
	Score           *int
	TeamID          *string
}

// NewPlayer 由首次出现的增量数据创建玩家
func NewPlayer(u PlayerUpdate) *Player {
	p := &Player{ID: u.ID}
	p.Merge(u)
	return p
}

// Merge 只覆盖本次下发的字段
func (p *Player) Merge(u PlayerUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Direction != nil {
		p.Direction = *u.Direction
	}
	if u.X != nil && u.Y != nil {
		p.X, p.Y = *u.X, *u.Y
		p.HasPos = true
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Invincible != nil {
		p.Invincible = *u.Invincible
	}
	if u.InvincibleTicks != nil {
		p.InvincibleTicks = *u.InvincibleTicks
	}
	if u.Speed != nil {
		p.Speed = *u.Speed
	}
	if u.BombLimit != nil {
		p.BombLimit = *u.BombLimit
	}
	if u.BombsPlaced != nil {
		p.BombsPlaced = *u.BombsPlaced
	}
	if u.BombPower != nil {
		p.BombPower = *u.BombPower
	}
	if u.Score != nil {
		p.Score = *u.Score
	}
	if u.TeamID != nil {
		p.TeamID = *u.TeamID
	}
}

// GetGridPosition 四舍五入后的格子坐标
func (p *Player) GetGridPosition() GridPos {
	return RoundToGrid(p.X, p.Y)
}

// FloorGridPosition 向下取整的格子坐标
func (p *Player) FloorGridPosition() GridPos {
	return FloorToGrid(p.X, p.Y)
}

func (p *Player) Alive() bool { return p.Status == StatusAlive }
func (p *Player) Dying() bool { return p.Status == StatusDying }
func (p *Player) Dead() bool  { return p.Status == StatusDead }

// SameTeam 同队（不判断是否为同一玩家）
func (p *Player) SameTeam(o *Player) bool {
	return p.TeamID == o.TeamID
}
