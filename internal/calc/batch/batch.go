// Package batch frames many decks in one request.
package batch

import (
	"context"
	"runtime"
	"sync"

	"Deckframe/internal/calc/framing"
	deckerr "Deckframe/internal/errors"
)

// MaxItems caps one batch.
const MaxItems = 200

// MaxRequestBytes caps a batch request body.
const MaxRequestBytes = 16 << 20

type Input struct {
	Items []framing.Input `json:"items"`
}

// Item is the outcome for Input.Items[Index]. A failed deck carries its
// error and does not fail the batch.
type Item struct {
	Index  int                 `json:"index"`
	Plan   *framing.Components `json:"plan"`
	Failed bool                `json:"failed"`
}

type Result struct {
	Results []Item `json:"results"`
	Failed  int    `json:"failed"`
}

// Calculate frames every item on up to GOMAXPROCS workers. Results keep
// the input order. A cancelled ctx stops workers from picking up new
// items and is returned as the error.
func Calculate(ctx context.Context, e *framing.Engine, in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, deckerr.New(deckerr.ErrCodeInvalidInput, "no items")
	}
	if len(in.Items) > MaxItems {
		return Result{}, deckerr.New(deckerr.ErrCodeInvalidInput, "%d items exceeds the batch limit of %d", len(in.Items), MaxItems)
	}
	if e == nil {
		e = framing.New(nil, nil)
	}

	out := Result{Results: make([]Item, len(in.Items))}
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(runtime.GOMAXPROCS(0), len(in.Items))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				plan, err := e.Calculate(in.Items[i])
				out.Results[i] = Item{Index: i, Plan: plan, Failed: err != nil}
			}
		}()
	}

feed:
	for i := range in.Items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	for _, it := range out.Results {
		if it.Failed {
			out.Failed++
		}
	}
	return out, nil
}
