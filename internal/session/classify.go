package session

import (
	"errors"

	"snex/internal/diag"
	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/templates"
	"snex/internal/types"
)

// Coded is implemented by errors that carry their own diagnostic code, such
// as manifest parse errors.
type Coded interface {
	error
	DiagCode() diag.Code
}

var layoutCodes = map[types.ErrorKind]diag.Code{
	types.ErrNotFinalised:       diag.LayNotFinalised,
	types.ErrInitArity:          diag.LayInitArity,
	types.ErrInitTypeMismatch:   diag.LayInitTypeMismatch,
	types.ErrMissingMethod:      diag.LayMissingMethod,
	types.ErrNoInliner:          diag.LayNoInliner,
	types.ErrNoNative:           diag.LayNoNative,
	types.ErrBadOperand:         diag.LayBadOperand,
	types.ErrOutOfBounds:        diag.LayOutOfBounds,
	types.ErrUnresolvedTemplate: diag.LayUnresolvedType,
	types.ErrDuplicateMember:    diag.LayDuplicateMember,
	types.ErrRecursiveType:      diag.LayRecursiveType,
	types.ErrInvalidArgument:    diag.LayInvalidArgument,
	types.ErrAmbiguousFunction:  diag.LayAmbiguousFunction,
}

var resolveCodes = map[namespace.ResolveErrorKind]diag.Code{
	namespace.ResolveUnresolved:    diag.ResUnresolved,
	namespace.ResolveAmbiguous:     diag.ResAmbiguous,
	namespace.ResolveNotNamespace:  diag.ResNotNamespace,
	namespace.ResolveNotVisible:    diag.ResNotVisible,
	namespace.ResolveScopeMismatch: diag.ResScope,
	namespace.ResolveKindMismatch:  diag.ResKindMismatch,
}

var templateCodes = map[templates.ErrorKind]diag.Code{
	templates.ErrUnknownTemplate:   diag.TplUnknown,
	templates.ErrParamCount:        diag.TplParamCount,
	templates.ErrParamKind:         diag.TplParamKind,
	templates.ErrIllegalConstant:   diag.TplIllegalConstant,
	templates.ErrConstruction:      diag.TplConstruction,
	templates.ErrDuplicateTemplate: diag.TplDuplicate,
}

// Classify maps an error to its diagnostic code. The outermost typed error
// wins, except that a failed construction reports the layout or resolution
// error it wraps.
func Classify(err error) diag.Code {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.DiagCode()
	}
	var terr *templates.TemplateError
	if errors.As(err, &terr) {
		if terr.Kind != templates.ErrConstruction || terr.Err == nil {
			return templateCodes[terr.Kind]
		}
		if inner := Classify(terr.Err); inner != diag.UnknownCode {
			return inner
		}
		return diag.TplConstruction
	}
	var rerr *namespace.ResolveError
	if errors.As(err, &rerr) {
		return resolveCodes[rerr.Kind]
	}
	var lerr *types.Error
	if errors.As(err, &lerr) {
		return layoutCodes[lerr.Kind]
	}
	return diag.UnknownCode
}

// candidates lists the matches of an ambiguous lookup.
func candidates(err error) []ident.ID {
	var rerr *namespace.ResolveError
	if errors.As(err, &rerr) && rerr.Kind == namespace.ResolveAmbiguous {
		return rerr.Candidates
	}
	return nil
}
