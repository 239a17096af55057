// Package ir defines the in-memory representation of one already-lowered
// translation unit. Values of these types are produced by decoding the
// JSON files an external IR-writer emits (see internal/loader) and are
// never mutated once a Module has finished loading.
package ir

// TypeKind enumerates the handful of type shapes the call-graph builder's
// compatibility rule needs to distinguish.
type TypeKind int

const (
	TypeInt TypeKind = iota
	TypePointer
	TypeArray
	TypeStruct
	TypeFunc
	TypeOther
)

// Type is a minimal structural type description. Only the fields the
// compatibility rule (internal/callgraph) and the function-pointer walk
// (internal/fnptr) consult are present.
type Type struct {
	Kind TypeKind `json:"kind"`

	// Integer
	IntBits int `json:"intBits,omitempty"`

	// Pointer / Array element, or function return type
	Elem *Type `json:"elem,omitempty"`
	// Pointer address space. 0 for non-pointers.
	AddrSpace int `json:"addrSpace,omitempty"`

	// Struct
	Name     string  `json:"name,omitempty"` // canonical struct name, "" if literal
	IsLiteral bool   `json:"literal,omitempty"`
	Fields   []*Type `json:"fields,omitempty"`

	// Function
	Params   []*Type `json:"params,omitempty"`
	Variadic bool    `json:"variadic,omitempty"`

	// Fallback identity for the "otherwise: equal type-ids" rule.
	ID string `json:"id,omitempty"`
}

// Value is an operand: either a direct reference to a Function/global by
// scope-name, or an opaque non-function value (load, phi, select, cast,
// argument, constant, ...). CallSite.Callee and Constant.FuncRef both use
// this to express "this operand may or may not name a known function".
type Value struct {
	// FuncName is non-empty when this value directly names a function
	// symbol (a direct call target, or a function used as a constant).
	FuncName string `json:"funcName,omitempty"`
	// Kind describes the instruction producing this value when it is not
	// a direct function reference (e.g. "load", "phi", "select", "arg",
	// "call", "cast", "gep", "binop", "alloca"). Only used by the
	// assignment-based propagation mode.
	Kind string `json:"kind,omitempty"`
}

// DebugLoc is a source location attached to an instruction or a function's
// declaration.
type DebugLoc struct {
	File string `json:"file,omitempty"`
	Dir  string `json:"dir,omitempty"`
	Line int    `json:"line,omitempty"`
}

// CallSite is a call-like instruction. Identity is the pointer to this
// struct; CallSites are never copied by value once owned by a Module.
type CallSite struct {
	Callee      Value    `json:"callee"`
	Indirect    bool     `json:"indirect"`
	InlineAsm   bool     `json:"inlineAsm,omitempty"`
	Intrinsic   bool     `json:"intrinsic,omitempty"`
	ResultType  *Type    `json:"resultType,omitempty"`
	ArgTypes    []*Type  `json:"argTypes,omitempty"`
	Variadic    bool     `json:"variadic,omitempty"`
	Loc         DebugLoc `json:"loc,omitempty"`
	DbgIntrinsic bool    `json:"dbgIntrinsic,omitempty"` // llvm.dbg.* calls

	Block *BasicBlock `json:"-"` // back-reference, set by loader
}

// Instruction is a generic IR node. Only CallSites carry the structure the
// core needs; other instructions are represented sparsely (opcode + debug
// location) since the slicer only needs "first debug-located instruction
// of a block" and the fnptr resolver only needs constant trees (Constant,
// not Instruction).
type Instruction struct {
	Opcode string   `json:"opcode"`
	Loc    DebugLoc `json:"loc,omitempty"`
	Call   *CallSite `json:"call,omitempty"` // non-nil iff this is a call-like instruction
}

// BasicBlock is a straight-line sequence of instructions with explicit
// successor/predecessor edges (filled in by the loader from the IR's CFG
// edges).
type BasicBlock struct {
	ID    string         `json:"id"`
	Insts []*Instruction `json:"insts"`
	Succs []string       `json:"succs"` // block IDs
	Preds []string       `json:"-"`     // computed by loader, not serialized

	Func *Function `json:"-"` // back-reference, set by loader
}

// Subprogram is debug metadata for a function's declaration site.
type Subprogram struct {
	File    string `json:"file,omitempty"`
	Dir     string `json:"dir,omitempty"`
	DeclLine int   `json:"declLine,omitempty"`
}

// Function is a symbol with a body (possibly empty for a declaration).
type Function struct {
	Name       string        `json:"name"`
	Linkage    string        `json:"linkage"` // "external" | "internal"
	Section    string        `json:"section,omitempty"`
	IsDef      bool          `json:"isDef"` // has a body
	Blocks     []*BasicBlock `json:"blocks,omitempty"`
	Params     []*Type       `json:"params,omitempty"`
	ReturnType *Type         `json:"returnType,omitempty"`
	Variadic   bool          `json:"variadic,omitempty"`
	Intrinsic  bool          `json:"intrinsic,omitempty"`
	Subprogram *Subprogram   `json:"subprogram,omitempty"`

	// AddressTaken is produced by the IR-writer: true iff this function's
	// address is used anywhere other than as a direct call target
	// (stored, passed as an argument, returned, compared, ...). The
	// already-lowered IR this tool consumes carries this bit directly
	// rather than recomputing it from a full value-use walk.
	AddressTaken bool `json:"addressTaken,omitempty"`

	Module string `json:"-"` // module stem, set by loader
}

// Constant is a node in a global initializer's constant tree, consumed by
// internal/fnptr's processInitializers walk.
type Constant struct {
	Kind     string      `json:"kind"` // "struct" | "array" | "func" | "other"
	StructTy *Type       `json:"structTy,omitempty"`
	Fields   []*Constant `json:"fields,omitempty"`   // struct fields / array elements
	FuncRef  string      `json:"funcRef,omitempty"`  // non-empty iff Kind == "func"
}

// Global is a module-scope variable, optionally with an initializer.
type Global struct {
	Name        string    `json:"name"`
	Linkage     string    `json:"linkage"`
	Type        *Type     `json:"type,omitempty"`
	Initializer *Constant `json:"initializer,omitempty"`

	Module string `json:"-"`
}

// Module is one parsed translation unit.
type Module struct {
	Path    string      `json:"-"` // input file path, set by loader
	Stem    string      `json:"-"` // module-stem used by the scope-name rule
	Funcs   []*Function `json:"functions"`
	Globals []*Global   `json:"globals"`
}
