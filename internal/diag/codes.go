package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// layout and descriptor failures
	LayInfo              Code = 1000
	LayNotFinalised      Code = 1001
	LayInitArity         Code = 1002
	LayInitTypeMismatch  Code = 1003
	LayMissingMethod     Code = 1004
	LayNoInliner         Code = 1005
	LayNoNative          Code = 1006
	LayBadOperand        Code = 1007
	LayOutOfBounds       Code = 1008
	LayUnresolvedType    Code = 1009
	LayDuplicateMember   Code = 1010
	LayRecursiveType     Code = 1011
	LayInvalidArgument   Code = 1012
	LayAmbiguousFunction Code = 1013

	// symbol resolution
	ResInfo         Code = 2000
	ResUnresolved   Code = 2001
	ResAmbiguous    Code = 2002
	ResNotNamespace Code = 2003
	ResNotVisible   Code = 2004
	ResScope        Code = 2005
	ResKindMismatch Code = 2006

	// templates
	TplInfo             Code = 3000
	TplUnknown          Code = 3001
	TplParamCount       Code = 3002
	TplParamKind        Code = 3003
	TplIllegalConstant  Code = 3004
	TplConstruction     Code = 3005
	TplDuplicate        Code = 3006
	TplInstantiationLog Code = 3007

	// declaration manifest
	DclInfo          Code = 4000
	DclSyntax        Code = 4001
	DclBadTypeExpr   Code = 4002
	DclBadTemplate   Code = 4003
	DclBadConstant   Code = 4004
	DclBadPadding    Code = 4005
	DclEmptyName     Code = 4006
	DclUnknownMember Code = 4007
	DclRedundantUse  Code = 4008

	// files and configuration
	IOLoadFileError  Code = 5001
	IOConfigError    Code = 5002
	IOSnapshotError  Code = 5003
	IOSnapshotSchema Code = 5004
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		LayInfo:              "Layout information",
		LayNotFinalised:      "Type layout is not finalised",
		LayInitArity:         "Initialiser has the wrong number of elements",
		LayInitTypeMismatch:  "Initialiser element has the wrong type",
		LayMissingMethod:     "Sub-type lacks a forwarded method",
		LayNoInliner:         "No inliner for the requested phase",
		LayNoNative:          "Function has no native implementation",
		LayBadOperand:        "Operand cannot be used here",
		LayOutOfBounds:       "Index out of bounds",
		LayUnresolvedType:    "Type still depends on template arguments",
		LayDuplicateMember:   "Duplicate member",
		LayRecursiveType:     "Type contains itself",
		LayInvalidArgument:   "Invalid argument",
		LayAmbiguousFunction: "Ambiguous function call",
		ResInfo:              "Resolution information",
		ResUnresolved:        "Unresolved symbol",
		ResAmbiguous:         "Ambiguous symbol",
		ResNotNamespace:      "Qualifier does not name a namespace",
		ResNotVisible:        "Symbol is not visible here",
		ResScope:             "Declaration outside the current namespace",
		ResKindMismatch:      "Symbol has the wrong kind",
		TplInfo:              "Template information",
		TplUnknown:           "Unknown template",
		TplParamCount:        "Wrong number of template arguments",
		TplParamKind:         "Template argument has the wrong kind",
		TplIllegalConstant:   "Illegal template constant",
		TplConstruction:      "Template instantiation failed",
		TplDuplicate:         "Template declared twice",
		TplInstantiationLog:  "Template instantiated",
		DclInfo:              "Declaration information",
		DclSyntax:            "Malformed declaration manifest",
		DclBadTypeExpr:       "Malformed type expression",
		DclBadTemplate:       "Malformed template argument list",
		DclBadConstant:       "Constant value does not fit its type",
		DclBadPadding:        "Unknown padding mode",
		DclEmptyName:         "Declaration without a name",
		DclUnknownMember:     "Unknown member",
		DclRedundantUse:      "Namespace is already in use",
		IOLoadFileError:      "Could not read file",
		IOConfigError:        "Invalid configuration",
		IOSnapshotError:      "Could not read or write token snapshot",
		IOSnapshotSchema:     "Token snapshot has an unsupported schema",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
