package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/aicompliance/internal/model"
)

func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("keeps site order and failures", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("unreachable")
		analyze := func(_ context.Context, site string) (*model.ComplianceReport, error) {
			if site == "https://bad.example" {
				return nil, boom
			}
			return &model.ComplianceReport{Website: site}, nil
		}
		bp := NewBatchProcessor(analyze, WithConcurrency(3))

		sites := []string{"https://a.example", "https://bad.example", "https://c.example"}
		results, err := bp.ProcessBatch(context.Background(), sites)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, r := range results {
			if r.Website != sites[i] {
				t.Errorf("result %d: expected %s, got %s", i, sites[i], r.Website)
			}
		}
		if !errors.Is(results[1].Err, boom) || results[1].Report != nil {
			t.Errorf("expected failure for bad site, got %+v", results[1])
		}
		if results[2].Report == nil || results[2].Report.Website != sites[2] {
			t.Errorf("expected report for c, got %+v", results[2])
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		analyze := func(context.Context, string) (*model.ComplianceReport, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return &model.ComplianceReport{}, nil
		}
		bp := NewBatchProcessor(analyze, WithConcurrency(2))

		if _, err := bp.ProcessBatch(context.Background(), make([]string, 6)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent analyses, got %d", peak.Load())
		}
	})

	t.Run("callback receives every site", func(t *testing.T) {
		t.Parallel()

		analyze := func(_ context.Context, site string) (*model.ComplianceReport, error) {
			return &model.ComplianceReport{Website: site}, nil
		}
		bp := NewBatchProcessor(analyze)

		var mu sync.Mutex
		seen := map[int]string{}
		err := bp.ProcessBatchWithCallback(context.Background(), []string{"x", "y"}, func(r Result, i int) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = r.Website
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[0] != "x" || seen[1] != "y" {
			t.Errorf("unexpected callbacks %v", seen)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		analyze := func(context.Context, string) (*model.ComplianceReport, error) {
			calls.Add(1)
			return &model.ComplianceReport{}, nil
		}
		results, err := NewBatchProcessor(analyze).ProcessBatch(ctx, []string{"a", "b"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no analysis, got %d", calls.Load())
		}
		for _, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("expected cancelled result, got %+v", r)
			}
		}
	})
}
