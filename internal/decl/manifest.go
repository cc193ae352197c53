// Package decl reads declaration manifests: TOML documents describing
// namespaces, structs, struct templates, constants, enums, aliases and
// explicit template instantiations. Build replays a manifest into a
// session.
package decl

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type Manifest struct {
	Path        string            `toml:"-"`
	Namespaces  []NamespaceDecl   `toml:"namespace"`
	Instantiate []InstantiateDecl `toml:"instantiate"`
}

type NamespaceDecl struct {
	// Name may be qualified ("dsp::filters"); empty means the root.
	Name      string         `toml:"name"`
	Using     []string       `toml:"using"`
	Structs   []StructDecl   `toml:"struct"`
	Constants []ConstantDecl `toml:"constant"`
	Enums     []EnumDecl     `toml:"enum"`
	Aliases   []AliasDecl    `toml:"alias"`
}

type StructDecl struct {
	Name string `toml:"name"`
	// Template lists the template arguments: "T", "N:int", "Ts...",
	// "T=float", "N:int=4".
	Template   []string     `toml:"template"`
	Padding    string       `toml:"padding"`
	Visibility string       `toml:"visibility"`
	Comment    string       `toml:"comment"`
	Members    []MemberDecl `toml:"members"`
}

type MemberDecl struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	Default    any    `toml:"default"`
	Visibility string `toml:"visibility"`
	Comment    string `toml:"comment"`
}

type ConstantDecl struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	Value      any    `toml:"value"`
	Visibility string `toml:"visibility"`
	Comment    string `toml:"comment"`
}

type EnumDecl struct {
	Name       string          `toml:"name"`
	Values     []EnumValueDecl `toml:"values"`
	Visibility string          `toml:"visibility"`
	Comment    string          `toml:"comment"`
}

// EnumValueDecl without a value continues from the previous one.
type EnumValueDecl struct {
	Name  string `toml:"name"`
	Value *int64 `toml:"value"`
}

type AliasDecl struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	Visibility string `toml:"visibility"`
	Comment    string `toml:"comment"`
}

type InstantiateDecl struct {
	Type string `toml:"type"`
	// Namespace is the scope the type expression is resolved from.
	Namespace string `toml:"namespace"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes a manifest. name is recorded as its Path. Unknown keys are
// rejected.
func Parse(name string, data []byte) (*Manifest, error) {
	m := &Manifest{Path: name}
	meta, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, &Error{Kind: ErrSyntax, Pos: -1, Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &Error{Kind: ErrSyntax, Pos: -1, Detail: "unknown keys: " + strings.Join(keys, ", ")}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) validate() error {
	for i, ns := range m.Namespaces {
		where := fmt.Sprintf("namespace[%d]", i)
		if ns.Name != "" {
			where = "namespace " + ns.Name
		}
		for j, s := range ns.Structs {
			if strings.TrimSpace(s.Name) == "" {
				return &Error{Kind: ErrEmptyName, Pos: -1, Detail: fmt.Sprintf("%s: struct[%d]", where, j)}
			}
			for k, mem := range s.Members {
				if strings.TrimSpace(mem.Name) == "" || strings.TrimSpace(mem.Type) == "" {
					return &Error{Kind: ErrEmptyName, Pos: -1, Detail: fmt.Sprintf("%s: struct %s: member[%d] needs name and type", where, s.Name, k)}
				}
			}
		}
		for j, c := range ns.Constants {
			if strings.TrimSpace(c.Name) == "" || c.Value == nil {
				return &Error{Kind: ErrEmptyName, Pos: -1, Detail: fmt.Sprintf("%s: constant[%d] needs name and value", where, j)}
			}
		}
		for j, e := range ns.Enums {
			if strings.TrimSpace(e.Name) == "" {
				return &Error{Kind: ErrEmptyName, Pos: -1, Detail: fmt.Sprintf("%s: enum[%d]", where, j)}
			}
		}
		for j, a := range ns.Aliases {
			if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Type) == "" {
				return &Error{Kind: ErrEmptyName, Pos: -1, Detail: fmt.Sprintf("%s: alias[%d] needs name and type", where, j)}
			}
		}
	}
	for i, inst := range m.Instantiate {
		if strings.TrimSpace(inst.Type) == "" {
			return &Error{Kind: ErrEmptyName, Pos: -1, Detail: fmt.Sprintf("instantiate[%d] needs a type", i)}
		}
	}
	return nil
}
