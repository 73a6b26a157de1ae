package chain

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/stat"
)

func twoSources(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g := New(opts...)
	mustAdd(t, g, "X", stat.NewLast())
	mustAdd(t, g, "Y", stat.NewLast())
	mustAdd(t, g, "Z", stat.NewCollect())
	if err := g.ConnectAll([]string{"X", "Y"}, "Z"); err != nil {
		t.Fatalf("ConnectAll failed: %v", err)
	}
	return g
}

func TestUpdateMany_ValidatesFirst(t *testing.T) {
	g := twoSources(t)

	err := g.UpdateMany([]Input{{ID: "X", Value: 1.0}, {ID: "Z", Value: 2.0}})
	if !errors.Is(err, ErrNotSource) {
		t.Fatalf("expected ErrNotSource, got %v", err)
	}
	if v := mustValue(t, g, "X"); v != nil {
		t.Errorf("X fed before validation finished: %v", v)
	}
}

func TestUpdateSynced_Interleaves(t *testing.T) {
	g := twoSources(t)

	report, err := g.UpdateSynced([]Sequence{
		{ID: "X", Values: stat.Of(1, 3)},
		{ID: "Y", Values: stat.Of(2, 4)},
	})
	if err != nil {
		t.Fatalf("UpdateSynced failed: %v", err)
	}
	if report.Steps != 2 || report.Warning != nil {
		t.Errorf("report = %+v", report)
	}

	want := []any{
		[]any{1.0, nil}, []any{1.0, 2.0},
		[]any{3.0, 2.0}, []any{3.0, 4.0},
	}
	if got := mustValue(t, g, "Z"); !reflect.DeepEqual(got, want) {
		t.Errorf("Z = %v, want %v", got, want)
	}
}

func TestUpdateSynced_LengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	g := twoSources(t, WithLogger(logging.NewJSONLogger(&buf, logging.WarnLevel)))

	report, err := g.UpdateSynced([]Sequence{
		{ID: "X", Values: stat.Of(1, 2, 3)},
		{ID: "Y", Values: stat.Of(10)},
	})
	if err != nil {
		t.Fatalf("mismatch should not be an error: %v", err)
	}
	if report.Steps != 1 {
		t.Errorf("Steps = %d, want 1", report.Steps)
	}
	w := report.Warning
	if w == nil {
		t.Fatal("expected a length warning")
	}
	if w.Processed != 1 || w.Lengths["X"] != 3 || w.Lengths["Y"] != 1 {
		t.Errorf("warning = %+v", w)
	}
	if w.Error() != "sequence lengths differ (X=3, Y=1): processed 1 steps" {
		t.Errorf("warning text = %q", w.Error())
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("warning not logged: %s", buf.String())
	}
	if v := mustValue(t, g, "X"); v != 1.0 {
		t.Errorf("X = %v, want only the first element fed", v)
	}
}

func TestUpdateSynced_Empty(t *testing.T) {
	g := twoSources(t)
	report, err := g.UpdateSynced(nil)
	if err != nil || report.Steps != 0 {
		t.Errorf("UpdateSynced(nil) = %+v, %v", report, err)
	}
	if _, err := g.UpdateSynced([]Sequence{{ID: "ghost"}}); !IsNotFound(err) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestUpdateSeq_StopsAtFirstError(t *testing.T) {
	g := New()
	mustAdd(t, g, "A", stat.NewLast())
	mustAdd(t, g, "B", stat.NewSum())
	mustConnect(t, g, "A", "B")

	err := g.UpdateSeq("A", []any{1.0, "bad", 2.0})
	if !errors.Is(err, ErrAggregate) {
		t.Fatalf("expected ErrAggregate, got %v", err)
	}
	if v := mustValue(t, g, "B"); v != 1.0 {
		t.Errorf("B = %v, want 1.0", v)
	}
	if v := mustValue(t, g, "A"); v != "bad" {
		t.Errorf("A = %v, want the failing input kept", v)
	}
}
