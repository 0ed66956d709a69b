package pipeline

import (
	"context"
	"errors"
	"testing"
)

type counters struct {
	trail []string
	total int
}

func step(name string, fail error) Step[counters] {
	return Step[counters]{
		Name: name,
		Run: func(_ context.Context, c counters) (counters, error) {
			if fail != nil {
				return c, fail
			}
			c.trail = append(c.trail, name)
			c.total++
			return c, nil
		},
	}
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	out, err := Run(context.Background(), counters{},
		step("first", nil),
		step("second", nil),
		step("third", nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.total != 3 {
		t.Fatalf("expected 3 steps to run, got %d", out.total)
	}
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if out.trail[i] != name {
			t.Fatalf("step %d: want %s, got %s", i, name, out.trail[i])
		}
	}
}

func TestRunShortCircuitsOnFirstFailure(t *testing.T) {
	boom := errors.New("second step failed")
	ran := false

	_, err := Run(context.Background(), counters{},
		step("first", nil),
		step("second", boom),
		Step[counters]{
			Name: "third",
			Run: func(_ context.Context, c counters) (counters, error) {
				ran = true
				return c, nil
			},
		},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("want the failing step's error, got %v", err)
	}
	if ran {
		t.Fatal("steps after the failure must not run")
	}
}

func TestRunExtendsContextAcrossSteps(t *testing.T) {
	type state struct {
		a, b int
	}

	out, err := Run(context.Background(), state{a: 1},
		Step[state]{Name: "set_b", Run: func(_ context.Context, s state) (state, error) {
			s.b = s.a + 1
			return s, nil
		}},
		Step[state]{Name: "overwrite_a", Run: func(_ context.Context, s state) (state, error) {
			s.a = s.b * 10
			return s, nil
		}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.a != 20 || out.b != 2 {
		t.Fatalf("unexpected final context: %+v", out)
	}
}

func TestRunWithNoStepsReturnsInitial(t *testing.T) {
	out, err := Run(context.Background(), counters{total: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.total != 7 {
		t.Fatalf("initial context not preserved: %+v", out)
	}
}
