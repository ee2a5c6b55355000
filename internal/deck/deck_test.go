package deck

import (
	"math/rand"
	"testing"
)

func TestDeckDealsWithoutReplacement(t *testing.T) {
	t.Parallel()

	d := New(rand.New(rand.NewSource(1)))

	seen := make(map[Card]bool)
	for i := 0; i < 26; i++ {
		cards, err := d.Deal(2)
		if err != nil {
			t.Fatalf("deal %d failed: %v", i, err)
		}
		for _, c := range cards {
			if seen[c] {
				t.Fatalf("card %v dealt twice", c)
			}
			seen[c] = true
		}
	}

	if len(seen) != 52 {
		t.Errorf("expected 52 distinct cards, got %d", len(seen))
	}
	if d.Remaining() != 0 {
		t.Errorf("expected empty deck, got %d remaining", d.Remaining())
	}
}

func TestDeckDealTooMany(t *testing.T) {
	t.Parallel()

	d := New(rand.New(rand.NewSource(1)))
	if _, err := d.Deal(53); err == nil {
		t.Fatal("expected error dealing 53 cards")
	}
	// A failed deal must not consume cards
	if d.Remaining() != 52 {
		t.Errorf("failed deal consumed cards: %d remaining", d.Remaining())
	}
}

func TestDeckResetRestoresAndReshuffles(t *testing.T) {
	t.Parallel()

	d := New(rand.New(rand.NewSource(7)))
	first, _ := d.Deal(52)

	d.Reset()
	if d.Remaining() != 52 {
		t.Fatalf("reset deck has %d cards", d.Remaining())
	}
	second, _ := d.Deal(52)

	// Same multiset, near-certainly different order
	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("reset did not reshuffle the deck")
	}
}

func TestDeckDeterministicUnderSeed(t *testing.T) {
	t.Parallel()

	a := New(rand.New(rand.NewSource(42)))
	b := New(rand.New(rand.NewSource(42)))

	ca, _ := a.Deal(52)
	cb, _ := b.Deal(52)
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("same seed produced different order at %d: %v vs %v", i, ca[i], cb[i])
		}
	}
}
