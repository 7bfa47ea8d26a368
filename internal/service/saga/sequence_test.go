package saga

import (
	"errors"
	"testing"
)

func TestSequence_Run_AllStepsInOrder(t *testing.T) {
	t.Parallel()

	var trace []string
	seq := New("test", nil, nil).
		AddStep("first", func() error {
			trace = append(trace, "first")
			return nil
		}, func() error {
			trace = append(trace, "undo-first")
			return nil
		}).
		AddStep("second", func() error {
			trace = append(trace, "second")
			return nil
		}, nil)

	if err := seq.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trace) != 2 || trace[0] != "first" || trace[1] != "second" {
		t.Fatalf("unexpected trace: %v", trace)
	}
}

func TestSequence_Run_CompensatesInReverseOrder(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var trace []string
	seq := New("test", nil, nil).
		AddStep("a", func() error {
			trace = append(trace, "a")
			return nil
		}, func() error {
			trace = append(trace, "undo-a")
			return nil
		}).
		AddStep("b", func() error {
			trace = append(trace, "b")
			return nil
		}, func() error {
			trace = append(trace, "undo-b")
			return nil
		}).
		AddStep("c", func() error { return boom }, func() error {
			t.Error("failed step must not be compensated")
			return nil
		})

	err := seq.Run()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to unwrap to boom, got %v", err)
	}

	want := []string{"a", "b", "undo-b", "undo-a"}
	if len(trace) != len(want) {
		t.Fatalf("unexpected trace: %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace[%d]: expected %s, got %s (full: %v)", i, want[i], trace[i], trace)
		}
	}
}

func TestSequence_Run_NilUndoSkipped(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	undone := false
	seq := New("test", nil, nil).
		AddStep("with-undo", func() error { return nil }, func() error {
			undone = true
			return nil
		}).
		AddStep("no-undo", func() error { return nil }, nil).
		AddStep("fails", func() error { return boom }, nil)

	err := seq.Run()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !undone {
		t.Fatal("expected compensable step to be undone")
	}

	var comp *CompensationError
	if !errors.As(err, &comp) {
		t.Fatalf("expected CompensationError, got %T", err)
	}
	if len(comp.Undo) != 0 {
		t.Fatalf("expected no undo failures, got %v", comp.Undo)
	}
}

func TestSequence_Run_CollectsUndoFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	undoErr := errors.New("undo broke")
	seq := New("test", nil, nil).
		AddStep("a", func() error { return nil }, func() error { return undoErr }).
		AddStep("b", func() error { return nil }, func() error { return nil }).
		AddStep("c", func() error { return boom }, nil)

	err := seq.Run()

	var comp *CompensationError
	if !errors.As(err, &comp) {
		t.Fatalf("expected CompensationError, got %T", err)
	}
	if !errors.Is(comp.Cause, boom) {
		t.Fatalf("expected cause boom, got %v", comp.Cause)
	}
	if len(comp.Undo) != 1 {
		t.Fatalf("expected 1 undo failure, got %v", comp.Undo)
	}
	if comp.Undo[0].Step != "a" || !errors.Is(comp.Undo[0].Err, undoErr) {
		t.Fatalf("unexpected undo failure: %+v", comp.Undo[0])
	}

	// Отказ undo не должен затирать первопричину для errors.Is.
	if !errors.Is(err, boom) {
		t.Fatal("expected errors.Is to still match the cause")
	}
}

func TestSequence_Run_FirstStepFails_NoCompensation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	seq := New("test", nil, nil).
		AddStep("only", func() error { return boom }, func() error {
			t.Error("undo of the failed step must not run")
			return nil
		})

	err := seq.Run()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
