package ai

import (
	"testing"

	"pgregory.net/rapid"

	"bomberbot/pkg/core"
)

var openMap9 = []string{
	"WWWWWWWWW",
	"W.......W",
	"W.......W",
	"W.......W",
	"W.......W",
	"W.......W",
	"W.......W",
	"W.......W",
	"WWWWWWWWW",
}

func fieldFor(m *core.GameMap, bombs ...core.Bomb) *DangerField {
	df := NewDangerField(&AIConfigNormal)
	df.Update(m, bombs)
	return df
}

func TestDangerCentreIsDoubleArm(t *testing.T) {
	m := core.ParseGameMap(openMap9)
	df := fieldFor(m, core.Bomb{Pos: core.GridPos{GridX: 4, GridY: 4}, Power: 2, Countdown: 60})

	centre := df.Hazard(4, 4)
	arm := df.Hazard(5, 4)
	if arm <= 0 {
		t.Fatalf("arm hazard = %v, want > 0", arm)
	}
	if centre != 2*arm {
		t.Errorf("centre = %v, want %v", centre, 2*arm)
	}
	if got := df.Hazard(7, 4); got != 0 {
		t.Errorf("hazard beyond power = %v, want 0", got)
	}
	if got := df.Hazard(5, 5); got != 0 {
		t.Errorf("diagonal hazard = %v, want 0", got)
	}
}

func TestDangerWallAndBrick(t *testing.T) {
	m := core.ParseGameMap([]string{
		"WWWWWWW",
		"W.W.B.W",
		"W.....W",
		"WWWWWWW",
	})
	// bomb at (3,1): wall on the left, brick on the right
	df := fieldFor(m, core.Bomb{Pos: core.GridPos{GridX: 3, GridY: 1}, Power: 3, Countdown: 30})

	if got := df.Hazard(2, 1); got != 0 {
		t.Errorf("wall cell hazard = %v, want 0", got)
	}
	if got := df.Hazard(1, 1); got != 0 {
		t.Errorf("cell behind wall hazard = %v, want 0", got)
	}
	if got := df.Hazard(4, 1); got <= 0 {
		t.Errorf("brick cell hazard = %v, want > 0", got)
	}
	if got := df.Hazard(5, 1); got != 0 {
		t.Errorf("cell behind brick hazard = %v, want 0", got)
	}
}

func TestDangerExplodingSoonIsCeiling(t *testing.T) {
	m := core.ParseGameMap(openMap9)
	df := fieldFor(m, core.Bomb{Pos: core.GridPos{GridX: 4, GridY: 4}, Power: 1, Countdown: 500, ExplodingSoon: true})
	if got := df.Hazard(4, 5); got != AIConfigNormal.HazardCeiling {
		t.Errorf("hazard = %v, want ceiling %v", got, AIConfigNormal.HazardCeiling)
	}
}

func TestDangerOutOfBoundsIsUnsafe(t *testing.T) {
	df := fieldFor(core.ParseGameMap(openMap9))
	if df.IsSafe(-1, 0) || df.IsSafe(9, 9) {
		t.Errorf("out of bounds reported safe")
	}
}

func drawBomb(t *rapid.T, label string) core.Bomb {
	return core.Bomb{
		Pos: core.GridPos{
			GridX: rapid.IntRange(1, 7).Draw(t, label+"x"),
			GridY: rapid.IntRange(1, 7).Draw(t, label+"y"),
		},
		Power:     rapid.IntRange(1, 5).Draw(t, label+"power"),
		Countdown: rapid.Float64Range(-5, 300).Draw(t, label+"countdown"),
	}
}

func TestDangerMonotonicInCountdown(t *testing.T) {
	m := core.ParseGameMap(openMap9)
	rapid.Check(t, func(t *rapid.T) {
		b := drawBomb(t, "b")
		hi := rapid.Float64Range(1, 300).Draw(t, "hi")
		lo := hi - rapid.Float64Range(0.5, hi).Draw(t, "delta")

		late := b
		late.Countdown = hi
		soon := b
		soon.Countdown = lo

		lateField := fieldFor(m, late)
		soonField := fieldFor(m, soon)

		for i := range lateField.Level {
			if soonField.Level[i] < lateField.Level[i] {
				t.Fatalf("cell %d: hazard %v at countdown %v < %v at countdown %v",
					i, soonField.Level[i], lo, lateField.Level[i], hi)
			}
		}
		if soonField.Hazard(b.Pos.GridX, b.Pos.GridY) <= lateField.Hazard(b.Pos.GridX, b.Pos.GridY) {
			t.Fatalf("centre hazard did not increase as countdown dropped from %v to %v", hi, lo)
		}
	})
}

func TestDangerIsMaxNotSum(t *testing.T) {
	m := core.ParseGameMap(openMap9)
	rapid.Check(t, func(t *rapid.T) {
		a := drawBomb(t, "a")
		b := drawBomb(t, "b")

		both := fieldFor(m, a, b)
		fa := fieldFor(m, a)
		fb := fieldFor(m, b)

		for i := range both.Level {
			want := fa.Level[i]
			if fb.Level[i] > want {
				want = fb.Level[i]
			}
			if both.Level[i] != want {
				t.Fatalf("cell %d: hazard %v, want max(%v, %v)", i, both.Level[i], fa.Level[i], fb.Level[i])
			}
		}
	})
}

func TestDangerCoversBlastLines(t *testing.T) {
	m := core.ParseGameMap([]string{
		"WWWWWWWWW",
		"W..B....W",
		"W.W.W.W.W",
		"W....B..W",
		"W.W.W.W.W",
		"W..B....W",
		"W.W.W.W.W",
		"W.......W",
		"WWWWWWWWW",
	})
	rapid.Check(t, func(t *rapid.T) {
		b := drawBomb(t, "b")
		df := fieldFor(m, b)
		arm := hazardForCountdown(&AIConfigNormal, b.Countdown, false)

		for _, cell := range b.GetExplosionCells(m) {
			if got := df.Hazard(cell.GridX, cell.GridY); got < arm {
				t.Fatalf("cell %v hazard %v < arm value %v", cell.GridPos, got, arm)
			}
		}
	})
}
