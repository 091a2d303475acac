package league

// PairKey identifies one season's meetings between two teams regardless of
// which side hosted. A sorts before B.
type PairKey struct {
	Season int
	A, B   string
}

func NewPairKey(season int, x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{Season: season, A: x, B: y}
}

type tally struct {
	aWins, bWins int
}

// HeadToHead is the per-season matchup book. Entries only come into
// existence through Record.
type HeadToHead struct {
	book map[PairKey]*tally
}

func NewHeadToHead() *HeadToHead {
	return &HeadToHead{book: make(map[PairKey]*tally)}
}

func (h *HeadToHead) Record(season int, winner, loser string) {
	k := NewPairKey(season, winner, loser)
	t, ok := h.book[k]
	if !ok {
		t = &tally{}
		h.book[k] = t
	}
	if winner == k.A {
		t.aWins++
	} else {
		t.bWins++
	}
}

// Wins returns how many of this season's meetings each side has won.
func (h *HeadToHead) Wins(season int, side, opp string) (sideWins, oppWins int) {
	k := NewPairKey(season, side, opp)
	t, ok := h.book[k]
	if !ok {
		return 0, 0
	}
	if side == k.A {
		return t.aWins, t.bWins
	}
	return t.bWins, t.aWins
}

func (h *HeadToHead) Len() int { return len(h.book) }
