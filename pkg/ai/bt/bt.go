// Package bt 最小行为树：选择、顺序、条件、动作四种节点。
package bt

type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

type Node interface {
	Tick(bb Blackboard) Status
}

// Blackboard 由具体行为自行断言为自己的类型
type Blackboard interface{}

// Selector 依次尝试子节点，第一个非 Failure 的结果即为本节点结果。
// Last 记录最近一次给出结果的子节点下标，全部失败时为 -1。
type Selector struct {
	Children []Node
	Last     int
}

func (s *Selector) Tick(bb Blackboard) Status {
	for i, child := range s.Children {
		switch child.Tick(bb) {
		case StatusSuccess:
			s.Last = i
			return StatusSuccess
		case StatusRunning:
			s.Last = i
			return StatusRunning
		case StatusFailure:
			continue
		}
	}
	s.Last = -1
	return StatusFailure
}

// Sequence 遇到 Failure 停止，全部 Success 才 Success。
// 常用作 Condition 守卫 + Action 的组合。
type Sequence struct {
	Name     string
	Children []Node
}

func (s *Sequence) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		switch child.Tick(bb) {
		case StatusFailure:
			return StatusFailure
		case StatusRunning:
			return StatusRunning
		case StatusSuccess:
			continue
		}
	}
	return StatusSuccess
}

type ConditionFunc func(bb Blackboard) bool

type Condition struct {
	Check ConditionFunc
}

func (c *Condition) Tick(bb Blackboard) Status {
	if c.Check == nil {
		return StatusFailure
	}
	if c.Check(bb) {
		return StatusSuccess
	}
	return StatusFailure
}

type ActionFunc func(bb Blackboard) Status

type Action struct {
	Name string
	Do   ActionFunc
}

func (a *Action) Tick(bb Blackboard) Status {
	if a.Do == nil {
		return StatusFailure
	}
	return a.Do(bb)
}

// NameOf 返回节点名，Action 和 Sequence 有名字
func NameOf(n Node) string {
	switch v := n.(type) {
	case *Action:
		return v.Name
	case *Sequence:
		return v.Name
	}
	return ""
}
