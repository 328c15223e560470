package core

// Explosion 一次爆炸的覆盖范围
type Explosion struct {
	GridX int // 中心格子X
	GridY int // 中心格子Y
	Range int // 爆炸范围
}

// BlastCell 爆炸覆盖的格子及其到中心的距离，中心距离为 0
type BlastCell struct {
	GridPos
	Distance int
}

// NewExplosion 由炸弹得到爆炸范围
func NewExplosion(bomb *Bomb) *Explosion {
	return &Explosion{
		GridX: bomb.Pos.GridX,
		GridY: bomb.Pos.GridY,
		Range: bomb.Power,
	}
}

// CalculateExplosionCells 计算爆炸影响的所有格子
func (e *Explosion) CalculateExplosionCells(gameMap *GameMap) []BlastCell {
	cells := []BlastCell{
		{GridPos: GridPos{GridX: e.GridX, GridY: e.GridY}}, // 中心点
	}

	for _, dir := range Directions {
		for i := 1; i <= e.Range; i++ {
			nx := e.GridX + dir.GridX*i
			ny := e.GridY + dir.GridY*i

			// GetTile 越界返回墙壁，这里同时覆盖了边界检查
			tile := gameMap.GetTile(nx, ny)
			if tile == TileWall {
				break
			}

			cells = append(cells, BlastCell{GridPos: GridPos{GridX: nx, GridY: ny}, Distance: i})

			if tile == TileBrick {
				// 炸毁砖块后停止该方向
				break
			}
		}
	}

	return cells
}

// ContainsCell 检查爆炸是否覆盖指定格子
func (e *Explosion) ContainsCell(gameMap *GameMap, x, y int) bool {
	if x != e.GridX && y != e.GridY {
		return false
	}
	for _, cell := range e.CalculateExplosionCells(gameMap) {
		if cell.GridX == x && cell.GridY == y {
			return true
		}
	}
	return false
}
