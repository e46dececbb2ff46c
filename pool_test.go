package qbasher

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
)

func TestPoolRunProcessesAllLines(t *testing.T) {
	var count int64
	fn := func(ctx context.Context, idx *Index, opts *Options, line string) ([]string, error) {
		atomic.AddInt64(&count, 1)
		return []string{"ok:" + line}, nil
	}
	opts := DefaultOptions()
	opts.QueryStreams = 3
	p := NewPool(nil, opts, nil, fn)

	in := strings.NewReader("a\nb\nc\nd\n")
	var out strings.Builder
	if err := p.Run(context.Background(), in, &out); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Fatalf("expected 4 lines processed, got %d", count)
	}
	for _, want := range []string{"ok:a", "ok:b", "ok:c", "ok:d"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q: %s", want, out.String())
		}
	}
}

func TestPoolRunSurvivesPerLineError(t *testing.T) {
	fn := func(ctx context.Context, idx *Index, opts *Options, line string) ([]string, error) {
		if line == "bad" {
			return nil, queryErrf(CategoryUnknown, ErrCodeMalformedQuery, "bad line")
		}
		return []string{line}, nil
	}
	opts := DefaultOptions()
	opts.QueryStreams = 1
	p := NewPool(nil, opts, nil, fn)

	in := strings.NewReader("good1\nbad\ngood2\n")
	var out strings.Builder
	err := p.Run(context.Background(), in, &out)
	if err == nil {
		t.Fatal("expected the bad line's error to surface")
	}
	if !strings.Contains(out.String(), "good1") || !strings.Contains(out.String(), "good2") {
		t.Fatalf("expected other lines to still be processed: %s", out.String())
	}
}
