package types

// The built-in baseline: the slice of the platform library every analysis
// needs before any provider runs. Names are interned in a fixed order so the
// ids below are identical in every store.

func cls(id ClassID, args ...Type) Type {
	return ClassType{Class: id, Args: args}
}

func tv(id TypeVarID) Type { return TypeVarType{Var: id} }

func extendsWild(t Type) Type { return WildcardType{Kind: WildcardExtends, Bound: t} }
func superWild(t Type) Type   { return WildcardType{Kind: WildcardSuper, Bound: t} }

func method(name string, ret Type, params ...Type) MethodDef {
	return MethodDef{Name: name, Return: ret, Params: params}
}

func staticMethod(name string, ret Type, params ...Type) MethodDef {
	m := method(name, ret, params...)
	m.IsStatic = true
	return m
}

func abstract(m MethodDef) MethodDef {
	m.IsAbstract = true
	return m
}

func varargs(m MethodDef) MethodDef {
	m.IsVarargs = true
	return m
}

func generic(m MethodDef, params ...TypeVarID) MethodDef {
	m.TypeParams = params
	return m
}

func ctor(params ...Type) MethodDef {
	return MethodDef{Name: "<init>", Params: params}
}

func field(name string, t Type) FieldDef {
	return FieldDef{Name: name, Type: t}
}

func staticField(name string, t Type) FieldDef {
	return FieldDef{Name: name, Type: t, IsStatic: true}
}

var baselineNames = []string{
	"java.lang.Object",
	"java.lang.String",
	"java.lang.CharSequence",
	"java.lang.Comparable",
	"java.lang.Number",
	"java.lang.Boolean",
	"java.lang.Byte",
	"java.lang.Short",
	"java.lang.Character",
	"java.lang.Integer",
	"java.lang.Long",
	"java.lang.Float",
	"java.lang.Double",
	"java.lang.Void",
	"java.lang.Math",
	"java.lang.System",
	"java.lang.StringBuilder",
	"java.lang.Class",
	"java.lang.Cloneable",
	"java.lang.Runnable",
	"java.lang.Throwable",
	"java.lang.Exception",
	"java.lang.RuntimeException",
	"java.lang.Error",
	"java.lang.IllegalArgumentException",
	"java.lang.Enum",
	"java.lang.Record",
	"java.lang.Iterable",
	"java.io.Serializable",
	"java.io.PrintStream",
	"java.util.Iterator",
	"java.util.Collection",
	"java.util.List",
	"java.util.ArrayList",
	"java.util.Map",
	"java.util.HashMap",
	"java.util.Collections",
	"java.util.function.Function",
	"java.util.function.Supplier",
	"java.util.function.Consumer",
	"java.util.function.Predicate",
}

// BaselineNames lists the binary names bootstrap interns, in intern
// order. Callers must not mutate the result.
func BaselineNames() []string {
	out := make([]string, len(baselineNames))
	copy(out, baselineNames)
	return out
}

func (s *Store) bootstrap() {
	for _, name := range baselineNames {
		s.Intern(name)
	}
	w := &s.well
	w.Object = s.names["java.lang.Object"]
	w.String = s.names["java.lang.String"]
	w.Throwable = s.names["java.lang.Throwable"]
	w.Exception = s.names["java.lang.Exception"]
	w.RuntimeException = s.names["java.lang.RuntimeException"]
	w.Cloneable = s.names["java.lang.Cloneable"]
	w.Serializable = s.names["java.io.Serializable"]
	w.Class = s.names["java.lang.Class"]
	w.Iterable = s.names["java.lang.Iterable"]
	w.Iterator = s.names["java.util.Iterator"]
	w.Number = s.names["java.lang.Number"]
	w.Boolean = s.names["java.lang.Boolean"]
	w.Byte = s.names["java.lang.Byte"]
	w.Short = s.names["java.lang.Short"]
	w.Character = s.names["java.lang.Character"]
	w.Integer = s.names["java.lang.Integer"]
	w.Long = s.names["java.lang.Long"]
	w.Float = s.names["java.lang.Float"]
	w.Double = s.names["java.lang.Double"]

	obj := cls(w.Object)
	str := cls(w.String)
	serializable := cls(w.Serializable)
	charSeq := cls(s.names["java.lang.CharSequence"])
	comparableID := s.names["java.lang.Comparable"]
	printStreamID := s.names["java.io.PrintStream"]
	printStream := cls(printStreamID)
	iteratorID := w.Iterator
	collectionID := s.names["java.util.Collection"]
	listID := s.names["java.util.List"]
	mapID := s.names["java.util.Map"]

	s.Define(w.Object, ClassDef{
		Name: "java.lang.Object",
		Methods: []MethodDef{
			method("toString", str),
			method("equals", Boolean, obj),
			method("hashCode", Int),
			method("getClass", cls(w.Class, WildcardType{})),
		},
		Constructors: []MethodDef{ctor()},
	})

	s.Define(s.names["java.lang.CharSequence"], ClassDef{
		IsInterface: true,
		Methods: []MethodDef{
			abstract(method("length", Int)),
			abstract(method("charAt", Char, Int)),
		},
	})

	comparableT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.Define(comparableID, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{comparableT},
		Methods: []MethodDef{
			abstract(method("compareTo", Int, tv(comparableT))),
		},
	})

	s.Define(w.String, ClassDef{
		Supertypes: []Type{obj, serializable, cls(comparableID, str), charSeq},
		Methods: []MethodDef{
			method("length", Int),
			method("isEmpty", Boolean),
			method("charAt", Char, Int),
			method("substring", str, Int),
			method("substring", str, Int, Int),
			method("concat", str, str),
			method("compareTo", Int, str),
			method("indexOf", Int, str),
			method("toLowerCase", str),
			staticMethod("valueOf", str, Int),
			staticMethod("valueOf", str, Long),
			staticMethod("valueOf", str, Char),
			staticMethod("valueOf", str, Double),
			staticMethod("valueOf", str, Boolean),
			staticMethod("valueOf", str, obj),
		},
		Constructors: []MethodDef{ctor(), ctor(str)},
	})

	s.Define(w.Number, ClassDef{
		Supertypes: []Type{obj, serializable},
		Methods: []MethodDef{
			abstract(method("intValue", Int)),
			abstract(method("longValue", Long)),
			abstract(method("floatValue", Float)),
			abstract(method("doubleValue", Double)),
		},
	})

	number := cls(w.Number)
	box := func(id ClassID, prim PrimitiveType, extra []MethodDef, fields []FieldDef) {
		methods := []MethodDef{
			staticMethod("valueOf", cls(id), prim),
			method("intValue", Int),
			method("longValue", Long),
			method("floatValue", Float),
			method("doubleValue", Double),
		}
		switch prim.Kind {
		case PrimByte:
			methods = append(methods, method("byteValue", Byte))
		case PrimShort:
			methods = append(methods, method("shortValue", Short))
		}
		s.Define(id, ClassDef{
			Supertypes: []Type{number, cls(comparableID, cls(id))},
			Methods:    append(methods, extra...),
			Fields:     fields,
		})
	}
	box(w.Byte, Byte, nil, []FieldDef{
		staticField("MIN_VALUE", Byte), staticField("MAX_VALUE", Byte)})
	box(w.Short, Short, nil, []FieldDef{
		staticField("MIN_VALUE", Short), staticField("MAX_VALUE", Short)})
	box(w.Integer, Int, []MethodDef{staticMethod("parseInt", Int, str)}, []FieldDef{
		staticField("MIN_VALUE", Int), staticField("MAX_VALUE", Int)})
	box(w.Long, Long, []MethodDef{staticMethod("parseLong", Long, str)}, []FieldDef{
		staticField("MIN_VALUE", Long), staticField("MAX_VALUE", Long)})
	box(w.Float, Float, nil, nil)
	box(w.Double, Double, []MethodDef{staticMethod("parseDouble", Double, str)}, nil)

	s.Define(w.Boolean, ClassDef{
		Supertypes: []Type{obj, serializable, cls(comparableID, cls(w.Boolean))},
		Methods: []MethodDef{
			staticMethod("valueOf", cls(w.Boolean), Boolean),
			staticMethod("parseBoolean", Boolean, str),
			method("booleanValue", Boolean),
		},
		Fields: []FieldDef{
			staticField("TRUE", cls(w.Boolean)),
			staticField("FALSE", cls(w.Boolean)),
		},
	})

	s.Define(w.Character, ClassDef{
		Supertypes: []Type{obj, serializable, cls(comparableID, cls(w.Character))},
		Methods: []MethodDef{
			staticMethod("valueOf", cls(w.Character), Char),
			method("charValue", Char),
		},
	})

	s.Define(s.names["java.lang.Void"], ClassDef{Supertypes: []Type{obj}})

	s.Define(s.names["java.lang.Math"], ClassDef{
		Supertypes: []Type{obj},
		Methods: []MethodDef{
			staticMethod("abs", Int, Int),
			staticMethod("abs", Long, Long),
			staticMethod("abs", Float, Float),
			staticMethod("abs", Double, Double),
			staticMethod("max", Int, Int, Int),
			staticMethod("max", Long, Long, Long),
			staticMethod("max", Float, Float, Float),
			staticMethod("max", Double, Double, Double),
			staticMethod("min", Int, Int, Int),
			staticMethod("min", Long, Long, Long),
			staticMethod("min", Float, Float, Float),
			staticMethod("min", Double, Double, Double),
			staticMethod("sqrt", Double, Double),
			staticMethod("round", Long, Double),
			staticMethod("round", Int, Float),
		},
		Fields: []FieldDef{
			staticField("PI", Double),
			staticField("E", Double),
		},
	})

	s.Define(s.names["java.lang.System"], ClassDef{
		Supertypes: []Type{obj},
		Methods: []MethodDef{
			staticMethod("currentTimeMillis", Long),
			staticMethod("exit", Void, Int),
		},
		Fields: []FieldDef{
			staticField("out", printStream),
			staticField("err", printStream),
		},
	})

	sb := cls(s.names["java.lang.StringBuilder"])
	s.Define(s.names["java.lang.StringBuilder"], ClassDef{
		Supertypes: []Type{obj, charSeq},
		Methods: []MethodDef{
			method("append", sb, str),
			method("append", sb, Int),
			method("append", sb, Long),
			method("append", sb, Char),
			method("append", sb, Boolean),
			method("append", sb, Double),
			method("append", sb, obj),
			method("length", Int),
			method("charAt", Char, Int),
			method("toString", str),
		},
		Constructors: []MethodDef{ctor(), ctor(str), ctor(Int)},
	})

	classT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.Define(w.Class, ClassDef{
		TypeParams: []TypeVarID{classT},
		Supertypes: []Type{obj, serializable},
		Methods: []MethodDef{
			method("getName", str),
			method("getSimpleName", str),
		},
	})

	s.Define(w.Cloneable, ClassDef{IsInterface: true})
	s.Define(w.Serializable, ClassDef{IsInterface: true})

	s.Define(s.names["java.lang.Runnable"], ClassDef{
		IsInterface: true,
		Methods:     []MethodDef{abstract(method("run", Void))},
	})

	throwable := cls(w.Throwable)
	s.Define(w.Throwable, ClassDef{
		Supertypes: []Type{obj, serializable},
		Methods: []MethodDef{
			method("getMessage", str),
			method("getCause", throwable),
		},
		Constructors: []MethodDef{ctor(), ctor(str)},
	})
	s.Define(w.Exception, ClassDef{
		Supertypes:   []Type{throwable},
		Constructors: []MethodDef{ctor(), ctor(str)},
	})
	s.Define(w.RuntimeException, ClassDef{
		Supertypes:   []Type{cls(w.Exception)},
		Constructors: []MethodDef{ctor(), ctor(str)},
	})
	s.Define(s.names["java.lang.Error"], ClassDef{
		Supertypes:   []Type{throwable},
		Constructors: []MethodDef{ctor(), ctor(str)},
	})
	s.Define(s.names["java.lang.IllegalArgumentException"], ClassDef{
		Supertypes:   []Type{cls(w.RuntimeException)},
		Constructors: []MethodDef{ctor(), ctor(str)},
	})

	enumID := s.names["java.lang.Enum"]
	enumE := s.NewTypeVar(TypeVarDef{Name: "E"})
	s.SetVarBounds(enumE, []Type{cls(enumID, tv(enumE))})
	s.Define(enumID, ClassDef{
		TypeParams: []TypeVarID{enumE},
		Supertypes: []Type{obj, serializable, cls(comparableID, tv(enumE))},
		Methods: []MethodDef{
			method("name", str),
			method("ordinal", Int),
			method("compareTo", Int, tv(enumE)),
		},
	})

	s.Define(s.names["java.lang.Record"], ClassDef{Supertypes: []Type{obj}})

	iterableT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.Define(w.Iterable, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{iterableT},
		Methods: []MethodDef{
			abstract(method("iterator", cls(iteratorID, tv(iterableT)))),
		},
	})

	iteratorE := s.NewTypeVar(TypeVarDef{Name: "E"})
	s.Define(iteratorID, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{iteratorE},
		Methods: []MethodDef{
			abstract(method("hasNext", Boolean)),
			abstract(method("next", tv(iteratorE))),
		},
	})

	collE := s.NewTypeVar(TypeVarDef{Name: "E"})
	s.Define(collectionID, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{collE},
		Supertypes:  []Type{cls(w.Iterable, tv(collE))},
		Methods: []MethodDef{
			abstract(method("size", Int)),
			abstract(method("isEmpty", Boolean)),
			abstract(method("add", Boolean, tv(collE))),
			abstract(method("contains", Boolean, obj)),
		},
	})

	listE := s.NewTypeVar(TypeVarDef{Name: "E"})
	listOfE := s.NewTypeVar(TypeVarDef{Name: "E"})
	s.Define(listID, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{listE},
		Supertypes:  []Type{cls(collectionID, tv(listE))},
		Methods: []MethodDef{
			abstract(method("get", tv(listE), Int)),
			abstract(method("set", tv(listE), Int, tv(listE))),
			abstract(method("add", Void, Int, tv(listE))),
			generic(varargs(staticMethod("of", cls(listID, tv(listOfE)), ArrayType{Element: tv(listOfE)})), listOfE),
		},
	})

	arrayListE := s.NewTypeVar(TypeVarDef{Name: "E"})
	s.Define(s.names["java.util.ArrayList"], ClassDef{
		TypeParams: []TypeVarID{arrayListE},
		Supertypes: []Type{obj, cls(listID, tv(arrayListE)), serializable},
		Constructors: []MethodDef{
			ctor(),
			ctor(Int),
			ctor(cls(collectionID, extendsWild(tv(arrayListE)))),
		},
	})

	mapK := s.NewTypeVar(TypeVarDef{Name: "K"})
	mapV := s.NewTypeVar(TypeVarDef{Name: "V"})
	s.Define(mapID, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{mapK, mapV},
		Methods: []MethodDef{
			abstract(method("get", tv(mapV), obj)),
			abstract(method("put", tv(mapV), tv(mapK), tv(mapV))),
			abstract(method("containsKey", Boolean, obj)),
			abstract(method("size", Int)),
		},
	})

	hashK := s.NewTypeVar(TypeVarDef{Name: "K"})
	hashV := s.NewTypeVar(TypeVarDef{Name: "V"})
	s.Define(s.names["java.util.HashMap"], ClassDef{
		TypeParams: []TypeVarID{hashK, hashV},
		Supertypes: []Type{obj, cls(mapID, tv(hashK), tv(hashV)), serializable},
		Constructors: []MethodDef{
			ctor(),
			ctor(Int),
			ctor(cls(mapID, extendsWild(tv(hashK)), extendsWild(tv(hashV)))),
		},
	})

	emptyT := s.NewTypeVar(TypeVarDef{Name: "T"})
	singletonT := s.NewTypeVar(TypeVarDef{Name: "T"})
	sortT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.SetVarBounds(sortT, []Type{cls(comparableID, superWild(tv(sortT)))})
	s.Define(s.names["java.util.Collections"], ClassDef{
		Supertypes: []Type{obj},
		Methods: []MethodDef{
			generic(staticMethod("emptyList", cls(listID, tv(emptyT))), emptyT),
			generic(staticMethod("singletonList", cls(listID, tv(singletonT)), tv(singletonT)), singletonT),
			generic(staticMethod("sort", Void, cls(listID, tv(sortT))), sortT),
		},
	})

	s.Define(printStreamID, ClassDef{
		Supertypes: []Type{obj},
		Methods: []MethodDef{
			method("println", Void),
			method("println", Void, Boolean),
			method("println", Void, Char),
			method("println", Void, Int),
			method("println", Void, Long),
			method("println", Void, Float),
			method("println", Void, Double),
			method("println", Void, str),
			method("println", Void, obj),
			method("print", Void, str),
			method("print", Void, Int),
			varargs(method("printf", printStream, str, ArrayType{Element: obj})),
		},
	})

	funcT := s.NewTypeVar(TypeVarDef{Name: "T"})
	funcR := s.NewTypeVar(TypeVarDef{Name: "R"})
	identityT := s.NewTypeVar(TypeVarDef{Name: "T"})
	funcID := s.names["java.util.function.Function"]
	s.Define(funcID, ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{funcT, funcR},
		Methods: []MethodDef{
			abstract(method("apply", tv(funcR), tv(funcT))),
			generic(staticMethod("identity", cls(funcID, tv(identityT), tv(identityT))), identityT),
		},
	})

	supplierT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.Define(s.names["java.util.function.Supplier"], ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{supplierT},
		Methods:     []MethodDef{abstract(method("get", tv(supplierT)))},
	})

	consumerT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.Define(s.names["java.util.function.Consumer"], ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{consumerT},
		Methods:     []MethodDef{abstract(method("accept", Void, tv(consumerT)))},
	})

	predicateT := s.NewTypeVar(TypeVarDef{Name: "T"})
	s.Define(s.names["java.util.function.Predicate"], ClassDef{
		IsInterface: true,
		TypeParams:  []TypeVarID{predicateT},
		Methods:     []MethodDef{abstract(method("test", Boolean, tv(predicateT)))},
	})
}
