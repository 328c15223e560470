package core

import "math"

// TileType 地图块类型，数值与服务器下发的编码一致
type TileType int

const (
	TileEmpty TileType = 0
	TileWall  TileType = 1
	TileBrick TileType = 2
)

func (t TileType) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileWall:
		return "wall"
	case TileBrick:
		return "brick"
	}
	return "unknown"
}

// GameMap 游戏地图，按 y*Width+x 平铺存储
type GameMap struct {
	Width  int
	Height int
	Tiles  []TileType
}

// GridPos 格子坐标（通用类型）
type GridPos struct {
	GridX, GridY int
}

// Directions 四个方向：上、下、左、右
var Directions = [4]GridPos{
	{GridX: 0, GridY: -1},
	{GridX: 0, GridY: 1},
	{GridX: -1, GridY: 0},
	{GridX: 1, GridY: 0},
}

// Add 返回偏移后的格子
func (p GridPos) Add(d GridPos) GridPos {
	return GridPos{GridX: p.GridX + d.GridX, GridY: p.GridY + d.GridY}
}

// Manhattan 曼哈顿距离
func (p GridPos) Manhattan(o GridPos) int {
	return absInt(p.GridX-o.GridX) + absInt(p.GridY-o.GridY)
}

// NewGameMap 创建全空地图
func NewGameMap(width, height int) *GameMap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &GameMap{
		Width:  width,
		Height: height,
		Tiles:  make([]TileType, width*height),
	}
}

// NewGameMapFromRows 由服务器下发的二维编码构建地图。
// 行长度不一致时按最长行补墙。
func NewGameMapFromRows(rows [][]int) *GameMap {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	m := NewGameMap(width, len(rows))
	for y, row := range rows {
		for x := 0; x < width; x++ {
			tile := TileWall
			if x < len(row) {
				tile = TileType(row[x])
			}
			m.Tiles[y*width+x] = tile
		}
	}
	return m
}

// ParseGameMap 由字符模板构建地图：W=墙壁, B=砖块, 其余为空地
func ParseGameMap(template []string) *GameMap {
	rows := make([][]int, len(template))
	for y, line := range template {
		rows[y] = make([]int, len(line))
		for x := 0; x < len(line); x++ {
			switch line[x] {
			case 'W', '#':
				rows[y][x] = int(TileWall)
			case 'B':
				rows[y][x] = int(TileBrick)
			default:
				rows[y][x] = int(TileEmpty)
			}
		}
	}
	return NewGameMapFromRows(rows)
}

// Clone 深拷贝
func (m *GameMap) Clone() *GameMap {
	if m == nil {
		return nil
	}
	c := &GameMap{Width: m.Width, Height: m.Height, Tiles: make([]TileType, len(m.Tiles))}
	copy(c.Tiles, m.Tiles)
	return c
}

// InBounds 坐标是否在地图内
func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// IsInterior 是否在最外圈边界以内
func (m *GameMap) IsInterior(x, y int) bool {
	return x >= 1 && x < m.Width-1 && y >= 1 && y < m.Height-1
}

// Index 平铺下标，调用方需保证坐标在地图内
func (m *GameMap) Index(x, y int) int {
	return y*m.Width + x
}

// GetTile 获取指定位置的地图块，越界视为墙壁
func (m *GameMap) GetTile(x, y int) TileType {
	if !m.InBounds(x, y) {
		return TileWall
	}
	return m.Tiles[m.Index(x, y)]
}

// SetTile 设置指定位置的地图块，越界静默忽略
func (m *GameMap) SetTile(x, y int, tile TileType) {
	if m.InBounds(x, y) {
		m.Tiles[m.Index(x, y)] = tile
	}
}

// RoundToGrid 连续坐标四舍五入到格子（0.5 向上取整）
func RoundToGrid(x, y float64) GridPos {
	return GridPos{
		GridX: int(math.Floor(x + 0.5)),
		GridY: int(math.Floor(y + 0.5)),
	}
}

// FloorToGrid 连续坐标向下取整到格子
func FloorToGrid(x, y float64) GridPos {
	return GridPos{
		GridX: int(math.Floor(x)),
		GridY: int(math.Floor(y)),
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
