package diagnostic

import (
	"strings"
	"testing"

	"github.com/corvid-lang/sema/internal/source"
)

func TestSinkAllSortedByPosition(t *testing.T) {
	s := New()
	s.UndeclVar(source.Position{Line: 5, Column: 1}, "b")
	s.UndeclVar(source.Position{Line: 1, Column: 1}, "a")
	s.UndeclVar(source.Position{Line: 3, Column: 1}, "c")

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Pos.Before(all[i-1].Pos) {
			t.Fatalf("All() should be sorted by position, got %v then %v", all[i-1].Pos, all[i].Pos)
		}
	}
}

func TestSinkAllIsStableAtEqualPositions(t *testing.T) {
	s := New()
	pos := source.Position{Line: 1, Column: 1}
	s.UndeclVar(pos, "first")
	s.UndeclVar(pos, "second")

	all := s.All()
	if !strings.Contains(all[0].Message, "first") || !strings.Contains(all[1].Message, "second") {
		t.Fatalf("diagnostics at equal positions should keep emission order, got %v", all)
	}
}

func TestSinkHasErrors(t *testing.T) {
	s := New()
	if s.HasErrors() {
		t.Fatalf("an empty sink should report no errors")
	}
	s.NoMainClass(source.Position{})
	if !s.HasErrors() {
		t.Fatalf("a sink with a recorded diagnostic should report errors")
	}
}

func TestFormatWireFormat(t *testing.T) {
	s := New()
	s.UndeclVar(source.Position{Line: 2, Column: 4}, "x")
	got := s.Format()
	want := "*** Error at " + (source.Position{Line: 2, Column: 4}).String() + ": undeclared variable 'x'"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestFormatEmptySinkIsEmptyString(t *testing.T) {
	if got := New().Format(); got != "" {
		t.Fatalf("Format() on an empty sink should be empty, got %q", got)
	}
}

func TestFormatColoredCarriesTheSameMessageAsFormat(t *testing.T) {
	s := New()
	s.UndeclVar(source.Position{Line: 2, Column: 4}, "x")
	if !strings.Contains(s.FormatColored(), "undeclared variable 'x'") {
		t.Fatalf("FormatColored() should still carry the plain message, got %q", s.FormatColored())
	}
}

func TestTruncateCapsDiagnosticCount(t *testing.T) {
	s := New()
	s.UndeclVar(source.Position{Line: 1}, "a")
	s.UndeclVar(source.Position{Line: 2}, "b")
	s.UndeclVar(source.Position{Line: 3}, "c")

	s.Truncate(2)
	if got := s.Count(); got != 2 {
		t.Fatalf("Truncate(2) should leave 2 diagnostics, got %d", got)
	}
}

func TestTruncateZeroIsNoCap(t *testing.T) {
	s := New()
	s.UndeclVar(source.Position{Line: 1}, "a")
	s.UndeclVar(source.Position{Line: 2}, "b")

	s.Truncate(0)
	if got := s.Count(); got != 2 {
		t.Fatalf("Truncate(0) should be a no-op, got %d", got)
	}
}
