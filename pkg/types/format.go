package types

import (
	"fmt"
	"strings"
)

// SimpleName strips the package and any enclosing class from a binary name.
func SimpleName(binary string) string {
	if i := strings.LastIndexAny(binary, ".$"); i >= 0 {
		return binary[i+1:]
	}
	return binary
}

// FormatType renders a type the way diagnostics and hover text spell it:
// simple class names with full generic arguments.
func FormatType(env Env, t Type) string {
	switch v := t.(type) {
	case nil:
		return "unknown"
	case VoidType:
		return "void"
	case PrimitiveType:
		return v.Kind.String()
	case ClassType:
		name := SimpleName(env.ClassName(v.Class))
		if len(v.Args) == 0 {
			return name
		}
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = FormatType(env, a)
		}
		return name + "<" + strings.Join(parts, ", ") + ">"
	case ArrayType:
		return FormatType(env, v.Element) + "[]"
	case TypeVarType:
		if def := env.Var(v.Var); def != nil && def.Name != "" {
			return def.Name
		}
		return v.Name()
	case WildcardType:
		switch v.Kind {
		case WildcardExtends:
			return "? extends " + FormatType(env, v.Bound)
		case WildcardSuper:
			return "? super " + FormatType(env, v.Bound)
		}
		return "?"
	case IntersectionType:
		parts := make([]string, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = FormatType(env, p)
		}
		return strings.Join(parts, " & ")
	case VirtualInnerType:
		return FormatType(env, v.Owner) + "." + v.Inner
	case NamedType:
		return v.Qualified
	case NullType:
		return "null"
	case UnknownType:
		return "unknown"
	case ErrorType:
		return "error"
	}
	return t.Name()
}

// FormatTypes renders a comma-separated list.
func FormatTypes(env Env, ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = FormatType(env, t)
	}
	return strings.Join(parts, ", ")
}

// Describe renders one candidate failure for diagnostics.
func (f CandidateFailure) Describe(env Env) string {
	switch f.Kind {
	case FailWrongCallKind:
		return fmt.Sprintf("not applicable to a %s call", f.CallKind)
	case FailWrongArity:
		if f.IsVarargs {
			return fmt.Sprintf("wrong arity: expected at least %d, found %d", f.Expected-1, f.Found)
		}
		return fmt.Sprintf("wrong arity: expected %d, found %d", f.Expected, f.Found)
	case FailExplicitTypeArgCount:
		return fmt.Sprintf("wrong number of type arguments: expected %d, found %d", f.Expected, f.Found)
	case FailTypeArgOutOfBounds:
		return fmt.Sprintf("type argument %s for %s out of bounds: not within %s",
			FormatType(env, f.TypeArg), f.TypeParam, FormatType(env, f.UpperBound))
	case FailArgumentConversion:
		return fmt.Sprintf("argument #%d: no conversion from %s to %s",
			f.ArgIndex+1, FormatType(env, f.From), FormatType(env, f.To))
	}
	return "not applicable"
}

// FormatCandidate renders a candidate's signature like Owner.name(T, U...).
func FormatCandidate(env Env, fc FailedCandidate) string {
	return formatSignature(env, SimpleName(env.ClassName(fc.Owner)), fc.Name, fc.Params, fc.IsVarargs)
}

// FormatResolved renders a resolved method's declared shape.
func FormatResolved(env Env, r *ResolvedMethod) string {
	params := r.Params
	if r.UsedVarargs && len(r.SignatureParams) > 0 {
		params = r.SignatureParams
	}
	return formatSignature(env, SimpleName(env.ClassName(r.Owner)), r.Name, params, r.IsVarargs)
}

func formatSignature(env Env, owner, name string, params []Type, isVarargs bool) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if isVarargs && i == len(params)-1 {
			if arr, ok := p.(ArrayType); ok {
				parts[i] = FormatType(env, arr.Element) + "..."
				continue
			}
		}
		parts[i] = FormatType(env, p)
	}
	if name == "<init>" {
		return fmt.Sprintf("%s(%s)", owner, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s.%s(%s)", owner, name, strings.Join(parts, ", "))
}
