package core

import (
	"reflect"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Map: ParseGameMap([]string{
			"WWWWW",
			"W.B.W",
			"W...W",
			"WWWWW",
		}),
		Players: []PlayerUpdate{
			{ID: "me", X: ptr(1.0), Y: ptr(1.0), Status: ptr(StatusAlive), TeamID: ptr("a"), BombPower: ptr(2)},
			{ID: "foe", X: ptr(3.0), Y: ptr(2.0), Status: ptr(StatusAlive), TeamID: ptr("b")},
		},
		Bombs: []Bomb{{ID: "b1", OwnerID: "foe", Pos: GridPos{3, 1}, Countdown: 40, Power: 1}},
		Items: []Item{{ID: "i1", Type: ItemExtraBomb, Pos: GridPos{1, 2}}},
	}
}

type worldView struct {
	Map     *GameMap
	Players []Player
	Bombs   []Bomb
	Items   []Item
}

func viewOf(w *World) worldView {
	v := worldView{Map: w.Map.Clone(), Bombs: w.Bombs(), Items: w.Items()}
	for _, p := range w.Players() {
		v.Players = append(v.Players, *p)
	}
	return v
}

func TestFullStateThenEmptyDeltaIsUnchanged(t *testing.T) {
	w := NewWorld()
	w.ApplyFullState(sampleSnapshot())
	before := viewOf(w)

	w.ApplyDelta(&Delta{})

	if after := viewOf(w); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed:\n got %+v\nwant %+v", after, before)
	}
}

func TestFullStateCopiesMap(t *testing.T) {
	s := sampleSnapshot()
	w := NewWorld()
	w.ApplyFullState(s)
	s.Map.SetTile(1, 2, TileBrick)
	if w.Map.GetTile(1, 2) != TileEmpty {
		t.Errorf("world map aliases snapshot map")
	}
}

func TestDeltaMergesOnlyPresentFields(t *testing.T) {
	w := NewWorld()
	w.ApplyFullState(sampleSnapshot())

	w.ApplyDelta(&Delta{Players: []PlayerUpdate{
		{ID: "me", Score: ptr(7)},
		{ID: "new", X: ptr(2.0), Y: ptr(2.0), Status: ptr(StatusAlive)},
	}})

	me := w.Player("me")
	if me.Score != 7 {
		t.Errorf("score = %d, want 7", me.Score)
	}
	if me.X != 1 || me.Y != 1 || me.BombPower != 2 || me.TeamID != "a" {
		t.Errorf("absent fields overwritten: %+v", me)
	}
	if w.Player("new") == nil {
		t.Fatalf("unknown player id not created")
	}
	if got := len(w.Players()); got != 3 {
		t.Errorf("players = %d, want 3", got)
	}
}

func TestDeltaReplacesBombsAndItemsWholesale(t *testing.T) {
	w := NewWorld()
	w.ApplyFullState(sampleSnapshot())

	w.ApplyDelta(&Delta{Bombs: []Bomb{}, Items: []Item{{ID: "i2", Pos: GridPos{3, 2}}}})

	if got := len(w.Bombs()); got != 0 {
		t.Errorf("bombs = %d, want 0", got)
	}
	if items := w.Items(); len(items) != 1 || items[0].ID != "i2" {
		t.Errorf("items = %+v, want only i2", items)
	}
}

func TestDestroyedBricks(t *testing.T) {
	w := NewWorld()
	w.ApplyFullState(sampleSnapshot())

	w.ApplyDelta(&Delta{DestroyedBricks: []GridPos{{2, 1}, {99, 99}, {-1, 0}}})

	if got := w.Map.GetTile(2, 1); got != TileEmpty {
		t.Errorf("tile = %v, want empty", got)
	}
}

func TestDeltaBeforeFullStateDoesNotPanic(t *testing.T) {
	w := NewWorld()
	w.ApplyDelta(&Delta{DestroyedBricks: []GridPos{{1, 1}}})
	if w.Map != nil {
		t.Errorf("map created from delta")
	}
}

func TestPredictedBombGraceWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	w := NewWorld()
	w.SetClock(func() time.Time { return now })
	w.ApplyFullState(sampleSnapshot())

	w.PredictBomb("me", GridPos{1, 1}, 2)
	bombs := w.Bombs()
	if len(bombs) != 2 || !bombs[0].Predicted() || bombs[0].Pos != (GridPos{1, 1}) {
		t.Fatalf("bombs = %+v, want predicted bomb first", bombs)
	}

	// a delta without the bomb keeps the prediction inside the window
	now = now.Add(100 * time.Millisecond)
	w.ApplyDelta(&Delta{Bombs: []Bomb{}})
	if got := len(w.Bombs()); got != 1 {
		t.Fatalf("bombs = %d, want 1 predicted", got)
	}

	now = now.Add(PredictionGrace)
	if got := len(w.Bombs()); got != 0 {
		t.Errorf("expired prediction still visible: %d bombs", got)
	}
}

func TestPredictedBombDiscardedWhenEchoed(t *testing.T) {
	w := NewWorld()
	w.ApplyFullState(sampleSnapshot())
	w.PredictBomb("me", GridPos{1, 1}, 2)

	w.ApplyDelta(&Delta{Bombs: []Bomb{{ID: "srv", OwnerID: "me", Pos: GridPos{1, 1}, Countdown: 150, Power: 2}}})

	bombs := w.Bombs()
	if len(bombs) != 1 || bombs[0].ID != "srv" {
		t.Errorf("bombs = %+v, want only the echoed server bomb", bombs)
	}
}

func TestReset(t *testing.T) {
	w := NewWorld()
	w.ApplyFullState(sampleSnapshot())
	w.PredictBomb("me", GridPos{1, 1}, 2)
	w.Reset()
	if w.Map != nil || len(w.Players()) != 0 || len(w.Bombs()) != 0 || len(w.Items()) != 0 {
		t.Errorf("state survived reset")
	}
}
