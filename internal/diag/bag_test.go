package diag_test

import (
	"testing"

	"snex/internal/diag"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := diag.NewBag(2)
	r := diag.BagReporter{Bag: b}
	diag.ReportWarning(r, diag.ResAmbiguous, diag.Location{Subject: "x"}, "w").Emit()
	if b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("severity flags wrong after warning")
	}
	diag.ReportError(r, diag.TplUnknown, diag.Location{Subject: "y"}, "e").Emit()
	diag.ReportError(r, diag.TplUnknown, diag.Location{Subject: "z"}, "dropped").Emit()
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d, want 2/1", b.Len(), b.Dropped())
	}
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := diag.NewBag(10)
	rb := diag.ReportError(diag.BagReporter{Bag: b}, diag.LayInitArity, diag.Location{File: "a.toml", Subject: "dsp::Pair"}, "expected 2 elements").
		WithNote(diag.Location{Subject: "dsp::Pair::b"}, "member declared here")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("emitted %d times", b.Len())
	}
	if n := b.Items()[0].Notes; len(n) != 1 || n[0].Msg != "member declared here" {
		t.Fatalf("notes: %+v", n)
	}
}

func TestSortDedupAndFormat(t *testing.T) {
	b := diag.NewBag(10)
	loc := diag.Location{File: "b.toml", Subject: "m::S"}
	b.Add(diag.NewError(diag.ResUnresolved, loc, "unresolved symbol   Foo\nin S"))
	b.Add(diag.New(diag.SevWarning, diag.ResAmbiguous, diag.Location{File: "a.toml"}, "ambiguous"))
	b.Add(diag.NewError(diag.ResUnresolved, loc, "unresolved symbol   Foo\nin S"))
	b.Dedup()
	b.Sort()

	want := "warning RES2002 a.toml ambiguous\n" +
		"error RES2001 b.toml:m::S unresolved symbol Foo in S"
	if got := diag.FormatShort(b.Items(), false); got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := []struct {
		code diag.Code
		want string
	}{
		{diag.LayRecursiveType, "LAY1011"},
		{diag.ResNotVisible, "RES2004"},
		{diag.TplIllegalConstant, "TPL3004"},
		{diag.DclBadTypeExpr, "DCL4002"},
		{diag.IOSnapshotSchema, "IO5004"},
		{diag.UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Fatalf("%d: got %s, want %s", tc.code, got, tc.want)
		}
	}
	if diag.Code(1999).Title() != "Unknown error" {
		t.Fatalf("unknown code title")
	}
}

func TestDedupReporter(t *testing.T) {
	b := diag.NewBag(10)
	r := diag.NewDedupReporter(diag.BagReporter{Bag: b})
	for range 3 {
		r.Report(diag.TplDuplicate, diag.SevError, diag.Location{Subject: "Pair"}, "dup", nil)
	}
	if b.Len() != 1 {
		t.Fatalf("got %d diagnostics", b.Len())
	}
}
