package core

type EventKind int

const (
	EventUnknown   EventKind = iota
	EventFullState           // initial_state
	EventDelta               // tick_delta
	EventTick                // tick / bomb_placed / bomb_exploding_soon / player_died
	EventGameOver
)

func (k EventKind) String() string {
	switch k {
	case EventFullState:
		return "full_state"
	case EventDelta:
		return "delta"
	case EventTick:
		return "tick"
	case EventGameOver:
		return "game_over"
	}
	return "unknown"
}

// Snapshot 全量状态
type Snapshot struct {
	Map     *GameMap
	Players []PlayerUpdate
	Bombs   []Bomb
	Items   []Item
}

// Delta 增量状态。切片为 nil 表示本次未下发，非 nil 的空切片表示清空。
type Delta struct {
	Players         []PlayerUpdate
	Bombs           []Bomb
	Items           []Item
	DestroyedBricks []GridPos
}

type GameOverEvent struct {
	WinnerID string
}

// Event 送入决策核心的状态事件
type Event struct {
	Kind     EventKind
	Snapshot *Snapshot
	Delta    *Delta
	GameOver *GameOverEvent
}
