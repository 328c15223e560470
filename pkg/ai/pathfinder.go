package ai

import (
	"container/heap"
	"math"

	"bomberbot/pkg/core"
)

// Pathfinder 在四连通网格上寻路。炸弹所在格视为障碍。
type Pathfinder struct {
	Map       *core.GameMap
	Danger    *DangerField
	NodeLimit int

	occupied []bool
}

// PathOptions 寻路选项
type PathOptions struct {
	// AvoidDanger 进入格子的代价为 1 + 0.5*危险值，否则为 1
	AvoidDanger bool
	// AllowBlockedGoal 允许终点本身不可通行（寻砖时终点是砖块）
	AllowBlockedGoal bool
}

// NewPathfinder 由地图、危险场和当前炸弹构建
func NewPathfinder(m *core.GameMap, danger *DangerField, bombs []core.Bomb, nodeLimit int) *Pathfinder {
	pf := &Pathfinder{
		Map:       m,
		Danger:    danger,
		NodeLimit: nodeLimit,
		occupied:  make([]bool, m.Width*m.Height),
	}
	for _, b := range bombs {
		if m.InBounds(b.Pos.GridX, b.Pos.GridY) {
			pf.occupied[m.Index(b.Pos.GridX, b.Pos.GridY)] = true
		}
	}
	return pf
}

// HasBomb 格子上是否有炸弹
func (pf *Pathfinder) HasBomb(p core.GridPos) bool {
	if !pf.Map.InBounds(p.GridX, p.GridY) {
		return false
	}
	return pf.occupied[pf.Map.Index(p.GridX, p.GridY)]
}

// IsWalkable 空地且没有炸弹
func (pf *Pathfinder) IsWalkable(p core.GridPos) bool {
	return pf.Map.GetTile(p.GridX, p.GridY) == core.TileEmpty && !pf.HasBomb(p)
}

// IsSafe 危险值低于阈值
func (pf *Pathfinder) IsSafe(p core.GridPos) bool {
	return pf.Danger.IsSafe(p.GridX, p.GridY)
}

type openNode struct {
	idx int
	f   float64
	seq int
}

type openSet []openNode

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(openNode)) }
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// FindPath A* 寻路，返回从起点到终点（含两端）的格子序列。
// 起点本身不要求可通行（站在炸弹上时也能出发）。
// 展开节点数超过 NodeLimit 时放弃。
func (pf *Pathfinder) FindPath(start, goal core.GridPos, opts PathOptions) ([]core.GridPos, bool) {
	m := pf.Map
	if !m.InBounds(start.GridX, start.GridY) || !m.InBounds(goal.GridX, goal.GridY) {
		return nil, false
	}
	if start == goal {
		return []core.GridPos{start}, true
	}
	if !opts.AllowBlockedGoal && !pf.IsWalkable(goal) {
		return nil, false
	}

	n := m.Width * m.Height
	g := make([]float64, n)
	for i := range g {
		g[i] = math.Inf(1)
	}
	came := make([]int, n)
	for i := range came {
		came[i] = -1
	}
	closed := make([]bool, n)

	startIdx := m.Index(start.GridX, start.GridY)
	goalIdx := m.Index(goal.GridX, goal.GridY)
	g[startIdx] = 0

	open := &openSet{}
	seq := 0
	heap.Push(open, openNode{idx: startIdx, f: float64(start.Manhattan(goal)), seq: seq})

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(openNode)
		if closed[cur.idx] {
			continue
		}
		if cur.idx == goalIdx {
			return pf.rebuild(came, goalIdx), true
		}
		closed[cur.idx] = true
		expanded++
		if pf.NodeLimit > 0 && expanded > pf.NodeLimit {
			return nil, false
		}

		pos := core.GridPos{GridX: cur.idx % m.Width, GridY: cur.idx / m.Width}
		for _, d := range core.Directions {
			next := pos.Add(d)
			if !m.InBounds(next.GridX, next.GridY) {
				continue
			}
			nIdx := m.Index(next.GridX, next.GridY)
			if closed[nIdx] {
				continue
			}
			if !pf.IsWalkable(next) && !(opts.AllowBlockedGoal && nIdx == goalIdx) {
				continue
			}

			cost := 1.0
			if opts.AvoidDanger {
				cost += 0.5 * pf.Danger.Hazard(next.GridX, next.GridY)
			}
			tentative := g[cur.idx] + cost
			if tentative >= g[nIdx] {
				continue
			}
			g[nIdx] = tentative
			came[nIdx] = cur.idx
			seq++
			heap.Push(open, openNode{idx: nIdx, f: tentative + float64(next.Manhattan(goal)), seq: seq})
		}
	}
	return nil, false
}

func (pf *Pathfinder) rebuild(came []int, goalIdx int) []core.GridPos {
	w := pf.Map.Width
	var rev []core.GridPos
	for idx := goalIdx; idx != -1; idx = came[idx] {
		rev = append(rev, core.GridPos{GridX: idx % w, GridY: idx / w})
	}
	path := make([]core.GridPos, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// FindNearestSafeCell BFS 找最近的可通行安全格，按发现顺序，不看代价
func (pf *Pathfinder) FindNearestSafeCell(start core.GridPos, maxHops int) (core.GridPos, bool) {
	m := pf.Map
	if !m.InBounds(start.GridX, start.GridY) {
		return core.GridPos{}, false
	}

	type hop struct {
		pos  core.GridPos
		dist int
	}
	visited := make([]bool, m.Width*m.Height)
	visited[m.Index(start.GridX, start.GridY)] = true
	queue := []hop{{pos: start}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if pf.IsWalkable(cur.pos) && pf.IsSafe(cur.pos) {
			return cur.pos, true
		}
		if cur.dist >= maxHops {
			continue
		}

		for _, d := range core.Directions {
			next := cur.pos.Add(d)
			if !m.InBounds(next.GridX, next.GridY) {
				continue
			}
			idx := m.Index(next.GridX, next.GridY)
			if visited[idx] || !pf.IsWalkable(next) {
				continue
			}
			visited[idx] = true
			queue = append(queue, hop{pos: next, dist: cur.dist + 1})
		}
	}
	return core.GridPos{}, false
}

// WithBomb 返回叠加了一个假想炸弹的副本，不修改原对象
func (pf *Pathfinder) WithBomb(b core.Bomb) *Pathfinder {
	danger := pf.Danger.Clone()
	danger.AddBomb(pf.Map, &b)

	occupied := make([]bool, len(pf.occupied))
	copy(occupied, pf.occupied)
	if pf.Map.InBounds(b.Pos.GridX, b.Pos.GridY) {
		occupied[pf.Map.Index(b.Pos.GridX, b.Pos.GridY)] = true
	}

	return &Pathfinder{
		Map:       pf.Map,
		Danger:    danger,
		NodeLimit: pf.NodeLimit,
		occupied:  occupied,
	}
}

// CanEscapeAfterPlacement 模拟在 start 放置炸弹后是否还能走到安全格
func (pf *Pathfinder) CanEscapeAfterPlacement(start core.GridPos, power int, fuse float64, maxHops int) bool {
	sim := pf.WithBomb(core.Bomb{Pos: start, Power: power, Countdown: fuse})
	safe, ok := sim.FindNearestSafeCell(start, maxHops)
	if !ok {
		return false
	}
	_, ok = sim.FindPath(start, safe, PathOptions{AvoidDanger: true})
	return ok
}
