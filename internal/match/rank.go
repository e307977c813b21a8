package match

import (
	"log/slog"
	"sort"
)

// Ranking is the list of reference pieces ordered by descending similarity.
// Equal scores keep ascending sequence offset order.
type Ranking struct {
	pieces []*Piece
}

// Rank scores every piece against target and returns them ordered best
// first. The pieces slice itself is left in its original order.
func Rank(pieces []*Piece, target *Piece, cfg Config) (*Ranking, error) {
	if len(pieces) == 0 {
		return nil, &EmptyPieceSetError{Reason: "nothing to rank"}
	}
	if cfg.Scoring == ScoringLegacy {
		slog.Warn("Legacy scoring compares only the red channel", "metric", cfg.Metric.String())
	}

	for _, p := range pieces {
		if err := p.CompareWith(target, cfg.Metric, cfg.Scoring); err != nil {
			return nil, err
		}
	}

	ranked := make([]*Piece, len(pieces))
	copy(ranked, pieces)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].offset < ranked[j].offset
	})

	best := ranked[0]
	pos, _ := best.Position()
	slog.Info("Ranked pieces",
		"pieces", len(ranked),
		"best_offset", best.offset,
		"best_row", pos.Row,
		"best_col", pos.Col,
		"best_score", best.score,
	)

	return &Ranking{pieces: ranked}, nil
}

// Len returns the number of ranked pieces.
func (r *Ranking) Len() int {
	return len(r.pieces)
}

// Best returns the top-ranked piece.
func (r *Ranking) Best() *Piece {
	return r.pieces[0]
}

// Top returns the k best pieces. k <= 0 or k beyond the list returns all.
func (r *Ranking) Top(k int) []*Piece {
	if k <= 0 || k > len(r.pieces) {
		k = len(r.pieces)
	}
	out := make([]*Piece, k)
	copy(out, r.pieces[:k])
	return out
}

// Pieces returns the full ranked list.
func (r *Ranking) Pieces() []*Piece {
	return r.Top(0)
}

// RankOf returns the 0-based rank of the piece with the given sequence
// offset, or -1 if it is not in the ranking.
func (r *Ranking) RankOf(offset int) int {
	for i, p := range r.pieces {
		if p.offset == offset {
			return i
		}
	}
	return -1
}
