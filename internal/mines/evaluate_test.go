package mines

import "testing"

func TestHitMine(t *testing.T) {
	t.Parallel()

	b := PlaceMine(New(5, 5), 2, 3, Player2)

	if hit, _ := HitMine(b, 2, 3); hit {
		t.Error("covered mine must not count as hit")
	}

	b = Reveal(b, 2, 3)
	hit, placer := HitMine(b, 2, 3)
	if !hit || placer != Player2 {
		t.Errorf("hit = %v, placer = %q; want true, player2", hit, placer)
	}

	if hit, _ := HitMine(b, -1, 0); hit {
		t.Error("out-of-bounds must not count as hit")
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	t.Run("ongoing", func(t *testing.T) {
		t.Parallel()
		b := PlaceMine(New(5, 5), 0, 0, Player1)
		if got := Evaluate(b); got != Ongoing {
			t.Errorf("fresh board: %v, want Ongoing", got)
		}
	})

	t.Run("mine revealed anywhere ends the game", func(t *testing.T) {
		t.Parallel()
		b := PlaceMine(New(5, 5), 4, 4, PrePlaced)
		b = Reveal(b, 4, 4)
		if got := Evaluate(b); got != MineRevealed {
			t.Errorf("got %v, want MineRevealed", got)
		}
	})

	t.Run("all safe cells revealed is a draw", func(t *testing.T) {
		t.Parallel()
		b := PlaceMine(New(5, 5), 0, 0, Player1)
		b = Reveal(b, 4, 4) // cascade opens every safe cell
		if got := Evaluate(b); got != AllSafeRevealed {
			t.Errorf("got %v, want AllSafeRevealed", got)
		}
	})

	t.Run("mineless board drawn after full reveal", func(t *testing.T) {
		t.Parallel()
		b := Reveal(New(5, 5), 2, 2)
		if got := Evaluate(b); got != AllSafeRevealed {
			t.Errorf("got %v, want AllSafeRevealed", got)
		}
	})
}
