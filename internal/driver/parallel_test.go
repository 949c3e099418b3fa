package driver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

func TestRunChecksSubmitsFromAllWorkers(t *testing.T) {
	s := NewSession()
	ids := make([]source.FileID, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, s.AddSource(fmt.Sprintf("f%d", i), []byte("content\n")))
	}

	// ten findings per file from parallel workers: exactly 1000 in total
	check := func(ctx context.Context, files *source.FileSet, id source.FileID, r diag.Reporter) error {
		for j := 0; j < 10; j++ {
			r.Report(diag.MustFinish(diag.NewError("finding").
				WithPrimaryLabel(source.NewSpan(id, 0, 1), "")))
		}
		return nil
	}
	if err := RunChecks(context.Background(), s, ids, 8, check); err != nil {
		t.Fatalf("RunChecks failed: %v", err)
	}
	if got := s.Diags.Len(); got != 1000 {
		t.Errorf("collected %d diagnostics, want 1000", got)
	}
	if got := s.Diags.Count(diag.SevError); got != 1000 {
		t.Errorf("Count(Error) = %d, want 1000", got)
	}
}

func TestRunChecksPropagatesFailure(t *testing.T) {
	s := NewSession()
	ids := []source.FileID{
		s.AddSource("a", []byte("x")),
		s.AddSource("b", []byte("y")),
	}

	boom := errors.New("boom")
	check := func(ctx context.Context, files *source.FileSet, id source.FileID, r diag.Reporter) error {
		if id == ids[1] {
			return boom
		}
		return nil
	}
	if err := RunChecks(context.Background(), s, ids, 1, check); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestRunChecksHonorsCancellation(t *testing.T) {
	s := NewSession()
	ids := []source.FileID{s.AddSource("a", []byte("x"))}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunChecks(ctx, s, ids, 1, func(context.Context, *source.FileSet, source.FileID, diag.Reporter) error {
		t.Error("check ran despite cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestHygieneCheck(t *testing.T) {
	s := NewSession()
	content := "clean line\n" +
		"trailing  \n" +
		"no newline at the end"
	id := s.AddSource("h.txt", []byte(content))

	if err := RunChecks(context.Background(), s, []source.FileID{id}, 1, HygieneCheck(120)); err != nil {
		t.Fatalf("RunChecks failed: %v", err)
	}

	codes := map[diag.Code]int{}
	for _, d := range s.Diags.All() {
		codes[d.Code]++
	}
	if codes[CodeTrailingSpace] != 1 {
		t.Errorf("trailing-space findings = %d, want 1", codes[CodeTrailingSpace])
	}
	if codes[CodeNoFinalNewline] != 1 {
		t.Errorf("final-newline findings = %d, want 1", codes[CodeNoFinalNewline])
	}
	if codes[CodeInvalidUTF8] != 0 {
		t.Errorf("unexpected utf-8 findings: %d", codes[CodeInvalidUTF8])
	}
}

func TestHygieneCheckLongLine(t *testing.T) {
	s := NewSession()
	long := make([]byte, 0, 140)
	for i := 0; i < 130; i++ {
		long = append(long, 'x')
	}
	long = append(long, '\n')
	id := s.AddSource("long.txt", long)

	if err := RunChecks(context.Background(), s, []source.FileID{id}, 1, HygieneCheck(120)); err != nil {
		t.Fatalf("RunChecks failed: %v", err)
	}

	found := false
	for _, d := range s.Diags.All() {
		if d.Code != CodeLongLine {
			continue
		}
		found = true
		primary, ok := d.PrimaryLabel()
		if !ok {
			t.Fatal("long-line finding has no primary label")
		}
		if primary.Span.Start != 120 || primary.Span.End != 130 {
			t.Errorf("overflow span = %v, want 120-130", primary.Span)
		}
	}
	if !found {
		t.Error("long line not reported")
	}
}

func TestHygieneCheckInvalidUTF8(t *testing.T) {
	s := NewSession()
	id := s.AddSource("bin.txt", []byte{'o', 'k', 0xFF, 'x', '\n'})

	if err := RunChecks(context.Background(), s, []source.FileID{id}, 1, HygieneCheck(120)); err != nil {
		t.Fatalf("RunChecks failed: %v", err)
	}
	all := s.Diags.All()
	if len(all) != 1 || all[0].Code != CodeInvalidUTF8 {
		t.Fatalf("diags = %+v", all)
	}
	primary, _ := all[0].PrimaryLabel()
	if primary.Span.Start != 2 {
		t.Errorf("first invalid byte at %d, want 2", primary.Span.Start)
	}
	if !s.Diags.HasSeverityAtLeast(diag.SevError) {
		t.Error("invalid UTF-8 should be an error")
	}
}
