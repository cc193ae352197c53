package types

import (
	"fmt"

	"snex/internal/ident"
)

// PaddingMode selects the struct padding formula.
type PaddingMode uint8

const (
	// PaddingLegacy inserts offset%alignment bytes before a member and adds
	// no trailing padding. Existing binary consumers depend on this layout.
	PaddingLegacy PaddingMode = iota
	// PaddingNatural rounds each offset up to the member alignment and the
	// total size up to the struct alignment.
	PaddingNatural
)

func (m PaddingMode) String() string {
	if m == PaddingNatural {
		return "natural"
	}
	return "legacy"
}

// ParsePaddingMode accepts "legacy", "natural" and the empty string.
func ParsePaddingMode(s string) (PaddingMode, error) {
	switch s {
	case "", "legacy":
		return PaddingLegacy, nil
	case "natural":
		return PaddingNatural, nil
	default:
		return PaddingLegacy, fmt.Errorf("unknown padding mode %q", s)
	}
}

// padding returns the bytes inserted before a member of alignment align at
// the running offset.
func (m PaddingMode) padding(offset, align int) int {
	if align <= 1 {
		return 0
	}
	if m == PaddingNatural {
		return roundUp(offset, align) - offset
	}
	return offset % align
}

// Member is one field of a struct.
type Member struct {
	Name       string
	Type       TypeInfo
	Offset     int
	Padding    int
	Default    *InitItem
	Visibility Visibility
	Comment    string
}

// StructType is a user-declared aggregate with ordered members.
type StructType struct {
	id        ident.ID
	params    []TemplateParameter
	members   []*Member
	functions *FunctionClass
	padding   PaddingMode
	layout    layoutState
	declaring bool
}

// NewStructType declares a struct. params are the bound template arguments
// of an instantiation, nil for plain structs.
func NewStructType(id ident.ID, params []TemplateParameter) *StructType {
	return &StructType{
		id:        id,
		params:    append([]TemplateParameter(nil), params...),
		functions: NewFunctionClass(id),
	}
}

func (s *StructType) ID() ident.ID { return s.id }

func (s *StructType) TemplateParameters() []TemplateParameter {
	return append([]TemplateParameter(nil), s.params...)
}

// SetPaddingMode must be called before FinaliseAlignment.
func (s *StructType) SetPaddingMode(m PaddingMode) { s.padding = m }

func (s *StructType) PaddingMode() PaddingMode { return s.padding }

// SetDeclaring marks the struct as still receiving members. Its layout is
// unknown until the flag is cleared; asking for it meanwhile means the
// struct contains itself.
func (s *StructType) SetDeclaring(on bool) { s.declaring = on }

// AddMember appends a member. Members cannot be added after finalisation.
func (s *StructType) AddMember(name string, t TypeInfo, vis Visibility) (*Member, error) {
	if s.layout.finalised {
		return nil, &Error{Kind: ErrInvalidArgument, Type: s.Key(), Name: name, Index: -1, Detail: "struct is already finalised"}
	}
	if _, dup := s.Member(name); dup {
		return nil, &Error{Kind: ErrDuplicateMember, Type: s.Key(), Name: name, Index: -1}
	}
	m := &Member{Name: name, Type: t, Visibility: vis}
	s.members = append(s.members, m)
	return m, nil
}

// SetDefault installs the default initialiser of member name.
func (s *StructType) SetDefault(name string, item InitItem) error {
	m, ok := s.Member(name)
	if !ok {
		return &Error{Kind: ErrInvalidArgument, Type: s.Key(), Name: name, Index: -1, Detail: "no such member"}
	}
	m.Default = &item
	return nil
}

// Members returns the members in declaration order.
func (s *StructType) Members() []*Member {
	return append([]*Member(nil), s.members...)
}

func (s *StructType) Member(name string) (*Member, bool) {
	for _, m := range s.members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// MemberOffset is the byte offset of member name.
func (s *StructType) MemberOffset(name string) (int, error) {
	if !s.layout.finalised {
		return 0, errNotFinalised(s.Key())
	}
	m, ok := s.Member(name)
	if !ok {
		return 0, &Error{Kind: ErrInvalidArgument, Type: s.Key(), Name: name, Index: -1, Detail: "no such member"}
	}
	return m.Offset, nil
}

// LoadMember reads primitive member name of the struct stored at addr.
func (s *StructType) LoadMember(mem *Memory, addr Addr, name string) (Value, error) {
	off, err := s.MemberOffset(name)
	if err != nil {
		return Value{}, err
	}
	m, _ := s.Member(name)
	kind := m.Type.Kind()
	if m.Type.IsRef() {
		kind = KindPointer
	}
	return LoadValue(mem, addr.Offset(off), kind)
}

// AddMemberFunction binds f to the struct.
func (s *StructType) AddMemberFunction(f *FunctionData) {
	s.functions.AddFunction(f)
}

func (s *StructType) Key() string {
	if len(s.params) == 0 {
		return s.id.String()
	}
	return TemplateKey(s.id, s.params)
}

func (s *StructType) String() string { return s.Key() }

func (s *StructType) Equal(other ComplexType) bool { return sameKey(s, other) }

func (s *StructType) FinaliseAlignment() error {
	if s.layout.finalised {
		return nil
	}
	if s.declaring {
		return &Error{Kind: ErrRecursiveType, Type: s.Key(), Index: -1, Detail: "layout needed while members are still being declared"}
	}
	if err := s.layout.enter(s.Key()); err != nil {
		return err
	}
	offset, align := 0, 1
	for _, m := range s.members {
		if err := finaliseType(m.Type); err != nil {
			s.layout.abort()
			return err
		}
		size, err := m.Type.Size()
		if err != nil {
			s.layout.abort()
			return err
		}
		a, err := m.Type.Alignment()
		if err != nil {
			s.layout.abort()
			return err
		}
		m.Padding = s.padding.padding(offset, a)
		offset += m.Padding
		m.Offset = offset
		offset += size
		align = max(align, a)
	}
	if s.padding == PaddingNatural {
		offset = roundUp(offset, align)
	}
	s.layout.done(offset, align)
	return nil
}

func (s *StructType) IsFinalised() bool { return s.layout.finalised }

func (s *StructType) Size() (int, error) { return s.layout.sizeOf(s.Key()) }

func (s *StructType) Alignment() (int, error) { return s.layout.alignOf(s.Key()) }

func (s *StructType) MakeDefaultInitialiserList() (InitialiserList, error) {
	items := make([]InitItem, 0, len(s.members))
	for _, m := range s.members {
		if m.Default != nil {
			items = append(items, *m.Default)
			continue
		}
		it, err := defaultItem(m.Type)
		if err != nil {
			return InitialiserList{}, err
		}
		items = append(items, it)
	}
	return InitialiserList{items: items}, nil
}

// Initialise writes one list element per member, in declaration order.
func (s *StructType) Initialise(mem *Memory, addr Addr, list InitialiserList) error {
	if !s.layout.finalised {
		return errNotFinalised(s.Key())
	}
	if list.Len() != len(s.members) {
		return errArity(s.Key(), len(s.members), list.Len())
	}
	for i, m := range s.members {
		if err := initialiseSlot(mem, addr.Offset(m.Offset), m.Type, list.At(i), s.Key(), i); err != nil {
			return err
		}
	}
	return nil
}

func (s *StructType) ForEach(visit Visitor, target ComplexType, addr Addr) bool {
	for _, m := range s.members {
		if visitNested(m.Type, visit, target, addr.Offset(m.Offset)) {
			return true
		}
	}
	return false
}

func (s *StructType) FunctionClass() (*FunctionClass, error) { return s.functions, nil }
