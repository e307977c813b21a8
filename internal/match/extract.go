package match

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// ExtractAll computes the distribution of every piece, fanning the work out
// over workers goroutines (runtime.NumCPU() when workers <= 0). Each piece
// is handled by exactly one worker and nothing else is written, so no
// locking is needed. ExtractAll returns once all workers have finished.
//
// Pieces that already have a distribution are skipped. If ctx is cancelled
// the remaining pieces are not dispatched and ctx.Err() is returned.
func ExtractAll(ctx context.Context, pieces []*Piece, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pieces) {
		workers = len(pieces)
	}
	start := time.Now()

	jobs := make(chan *Piece)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				p.extract()
			}
		}()
	}

	var err error
dispatch:
	for _, p := range pieces {
		if p.extracted {
			continue
		}
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return err
	}

	slog.Debug("Extracted histograms", "pieces", len(pieces), "workers", workers, "elapsed", time.Since(start))
	return nil
}
