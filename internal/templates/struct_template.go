package templates

import (
	"snex/internal/ident"
	"snex/internal/types"
)

// MemberSpec declares one member of a struct template. Type may mention the
// template's placeholders.
type MemberSpec struct {
	Name       string
	Type       types.TypeInfo
	Visibility types.Visibility
	Default    *types.InitItem
	Comment    string
}

// StructDef is the body of a struct template. It is read on every
// instantiation, so members can be added after the template is registered
// and its argument placeholders resolve.
type StructDef struct {
	Members []MemberSpec
	Padding types.PaddingMode
}

func (d *StructDef) AddMember(m MemberSpec) { d.Members = append(d.Members, m) }

// StructTemplate builds a class template whose instantiations are structs
// laid out from def, placeholders substituted by the bound arguments.
func StructTemplate(id ident.ID, params []types.TemplateParameter, def *StructDef) TemplateObject {
	return TemplateObject{
		ID:     id,
		Params: params,
		MakeClass: func(d ConstructData) (types.ComplexType, error) {
			s := types.NewStructType(d.ID, d.Args)
			s.SetPaddingMode(def.Padding)
			for _, m := range def.Members {
				t, err := types.SubstituteType(m.Type, d.Args)
				if err != nil {
					return nil, err
				}
				member, err := s.AddMember(m.Name, t, m.Visibility)
				if err != nil {
					return nil, err
				}
				member.Comment = m.Comment
				if m.Default != nil {
					member.Default = m.Default
				}
			}
			return s, nil
		},
	}
}
