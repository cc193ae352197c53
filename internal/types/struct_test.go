package types_test

import (
	"errors"
	"testing"

	"snex/internal/ident"
	"snex/internal/types"
)

func newStruct(t *testing.T, name string, members ...types.TypeInfo) *types.StructType {
	t.Helper()
	s := types.NewStructType(ident.Parse(name), nil)
	for i, m := range members {
		if _, err := s.AddMember(string(rune('a'+i)), m, types.Public); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}
	return s
}

func TestStructLayoutLegacyAndNatural(t *testing.T) {
	cases := []struct {
		mode      types.PaddingMode
		offsets   []int
		paddings  []int
		size      int
		alignment int
	}{
		{types.PaddingLegacy, []int{0, 8, 16}, []int{0, 4, 0}, 20, 8},
		{types.PaddingNatural, []int{0, 8, 16}, []int{0, 4, 0}, 24, 8},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			s := newStruct(t, "S", types.IntType, types.DoubleType, types.IntType)
			s.SetPaddingMode(tc.mode)
			if err := s.FinaliseAlignment(); err != nil {
				t.Fatalf("FinaliseAlignment: %v", err)
			}
			for i, m := range s.Members() {
				if m.Offset != tc.offsets[i] || m.Padding != tc.paddings[i] {
					t.Fatalf("member %s: got offset=%d padding=%d, want %d/%d", m.Name, m.Offset, m.Padding, tc.offsets[i], tc.paddings[i])
				}
			}
			size, _ := s.Size()
			align, _ := s.Alignment()
			if size != tc.size || align != tc.alignment {
				t.Fatalf("got size=%d align=%d, want %d/%d", size, align, tc.size, tc.alignment)
			}
		})
	}
}

func TestStructLayoutIsIdempotent(t *testing.T) {
	inner := newStruct(t, "Inner", types.FloatType, types.DoubleType)
	outer := newStruct(t, "Outer", types.IntType, types.Complex(inner), types.FloatType)

	type snap struct{ offset, padding int }
	capture := func() ([]snap, int, int) {
		if err := outer.FinaliseAlignment(); err != nil {
			t.Fatalf("FinaliseAlignment: %v", err)
		}
		var out []snap
		for _, m := range outer.Members() {
			out = append(out, snap{m.Offset, m.Padding})
		}
		size, _ := outer.Size()
		align, _ := outer.Alignment()
		return out, size, align
	}
	first, size1, align1 := capture()
	second, size2, align2 := capture()
	if size1 != size2 || align1 != align2 {
		t.Fatalf("layout changed: %d/%d then %d/%d", size1, align1, size2, align2)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("member %d changed: %+v then %+v", i, first[i], second[i])
		}
	}
	if !inner.IsFinalised() {
		t.Fatal("nested struct was not finalised")
	}
	if off, _ := outer.MemberOffset("b"); off != 8 {
		t.Fatalf("nested member offset: got %d, want 8", off)
	}
}

func TestStructQueriesBeforeFinalise(t *testing.T) {
	s := newStruct(t, "S", types.IntType)
	_, err := s.Size()
	if !errors.Is(err, &types.Error{Kind: types.ErrNotFinalised}) {
		t.Fatalf("expected not-finalised error, got %v", err)
	}
}

func TestStructRoundTripInitialise(t *testing.T) {
	s := newStruct(t, "S", types.IntType, types.FloatType, types.DoubleType, types.IntType)
	if err := s.FinaliseAlignment(); err != nil {
		t.Fatalf("FinaliseAlignment: %v", err)
	}
	mem := types.NewMemory(0)
	addr, err := mem.AllocType(s)
	if err != nil {
		t.Fatalf("AllocType: %v", err)
	}
	want := []types.Value{types.Int(-7), types.Float(1.5), types.Double(2.25), types.Int(42)}
	if err := s.Initialise(mem, addr, types.Values(want...)); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	for i, m := range s.Members() {
		got, err := s.LoadMember(mem, addr, m.Name)
		if err != nil {
			t.Fatalf("LoadMember(%s): %v", m.Name, err)
		}
		if got != want[i] {
			t.Fatalf("member %s: got %v, want %v", m.Name, got, want[i])
		}
	}
}

func TestStructInitialiseErrors(t *testing.T) {
	s := newStruct(t, "S", types.IntType, types.FloatType)
	if err := s.FinaliseAlignment(); err != nil {
		t.Fatalf("FinaliseAlignment: %v", err)
	}
	mem := types.NewMemory(0)
	addr, _ := mem.AllocType(s)

	err := s.Initialise(mem, addr, types.Values(types.Int(1)))
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Kind != types.ErrInitArity || terr.Want != "2" || terr.Got != "1" {
		t.Fatalf("expected arity error 2/1, got %v", err)
	}

	err = s.Initialise(mem, addr, types.Values(types.Int(1), types.Int(2)))
	if !errors.As(err, &terr) || terr.Kind != types.ErrInitTypeMismatch || terr.Index != 1 {
		t.Fatalf("expected type mismatch at index 1, got %v", err)
	}
}

func TestStructDefaultList(t *testing.T) {
	s := newStruct(t, "S", types.IntType, types.FloatType)
	if err := s.SetDefault("b", types.Item(types.Float(0.5))); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if err := s.FinaliseAlignment(); err != nil {
		t.Fatalf("FinaliseAlignment: %v", err)
	}
	list, err := s.MakeDefaultInitialiserList()
	if err != nil {
		t.Fatalf("MakeDefaultInitialiserList: %v", err)
	}
	if got := list.String(); got != "{ 0, 0.5f }" {
		t.Fatalf("default list: got %q", got)
	}
	mem := types.NewMemory(0)
	addr, _ := mem.AllocType(s)
	if err := s.Initialise(mem, addr, list); err != nil {
		t.Fatalf("Initialise with defaults: %v", err)
	}
}

func TestStructDuplicateMember(t *testing.T) {
	s := newStruct(t, "S", types.IntType)
	_, err := s.AddMember("a", types.FloatType, types.Public)
	if !errors.Is(err, &types.Error{Kind: types.ErrDuplicateMember}) {
		t.Fatalf("expected duplicate member error, got %v", err)
	}
}

func TestStructRecursiveValueType(t *testing.T) {
	s := types.NewStructType(ident.Parse("Node"), nil)
	if _, err := s.AddMember("self", types.Complex(s), types.Public); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	err := s.FinaliseAlignment()
	if !errors.Is(err, &types.Error{Kind: types.ErrRecursiveType}) {
		t.Fatalf("expected recursive type error, got %v", err)
	}
}

func TestStructForEachFindsNested(t *testing.T) {
	inner := newStruct(t, "Inner", types.IntType)
	outer := newStruct(t, "Outer", types.DoubleType, types.Complex(inner), types.Complex(inner))
	if err := outer.FinaliseAlignment(); err != nil {
		t.Fatalf("FinaliseAlignment: %v", err)
	}
	var addrs []types.Addr
	outer.ForEach(func(_ types.ComplexType, a types.Addr) bool {
		addrs = append(addrs, a)
		return false
	}, inner, 100)
	if len(addrs) != 2 || addrs[0] != 108 || addrs[1] != 112 {
		t.Fatalf("visited %v, want [108 112]", addrs)
	}
}
