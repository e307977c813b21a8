package match

import (
	"context"
	"errors"
	"testing"
)

func TestExtractAllMatchesSequential(t *testing.T) {
	ref := gridImage(6, 5, 9, 7, 0, 0)

	for _, workers := range []int{0, 1, 3, 64} {
		pieces, _, err := Partition(ref, GridSize{Cols: 6, Rows: 5})
		if err != nil {
			t.Fatalf("Partition failed: %v", err)
		}

		if err := ExtractAll(context.Background(), pieces, workers); err != nil {
			t.Fatalf("ExtractAll(workers=%d) failed: %v", workers, err)
		}

		for _, p := range pieces {
			if !p.Extracted() {
				t.Fatalf("workers=%d: piece %d not extracted", workers, p.Offset())
			}
			if p.Distribution() != Extract(p.RenderCopy()) {
				t.Errorf("workers=%d: piece %d distribution differs from sequential extraction", workers, p.Offset())
			}
		}
	}
}

func TestExtractAllCancelled(t *testing.T) {
	ref := gridImage(3, 3, 4, 4, 0, 0)
	pieces, _, err := Partition(ref, GridSize{Cols: 3, Rows: 3})
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ExtractAll(ctx, pieces, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExtractAllEmpty(t *testing.T) {
	if err := ExtractAll(context.Background(), nil, 4); err != nil {
		t.Errorf("ExtractAll on no pieces returned %v", err)
	}
}
