// Package token defines the lexemes produced by internal/lexer.
package token

import (
	"fmt"
	"strings"

	"github.com/thrushlang/thrushc-go/internal/span"
)

type Kind uint16

const (
	Illegal Kind = iota
	EOF

	// literals
	Integer
	Float
	Char
	Str    // C-string, NUL terminated
	RawStr // raw-bytes string
	Ident

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Arrow // ->
	Dot
	At // @

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Shl
	Shr
	Tilde
	Bang
	Assign
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	AndAnd
	OrOr
	PlusPlus
	MinusMinus

	keywordStart
	KwFn
	KwAsmFn
	KwIntrinsic
	KwStruct
	KwEnum
	KwType
	KwLocal
	KwConst
	KwStatic
	KwMut
	KwIf
	KwElif
	KwElse
	KwWhile
	KwFor
	KwLoop
	KwBreak
	KwContinue
	KwReturn
	KwPass
	KwUnreachable
	KwNew
	KwFixed
	KwDeref
	KwAsm
	KwAlloc
	KwLoad
	KwWrite
	KwAddress
	KwSizeof
	KwAlignof
	KwHalloc
	KwMemset
	KwMemmove
	KwMemcpy
	KwTrue
	KwFalse
	KwNullptr
	KwAs
	KwAnd
	KwOr
	KwImport
	KwPtr
	KwArray
	KwConstTy
	KwVoid
	KwBool
	KwChar
	KwAddr
	KwStr
	keywordEnd

	attributeStart
	AtPublic
	AtExtern
	AtConvention
	AtLinkage
	AtAlwaysInline
	AtNoInline
	AtInlineHint
	AtHot
	AtMinSize
	AtSafeStack
	AtStrongStack
	AtWeakStack
	AtPreciseFloats
	AtNoUnwind
	AtOptFuzzing
	AtPacked
	AtHeap
	AtStack
	AtAsmSyntax
	AtAsmSideEffects
	AtAsmAlignStack
	AtAsmThrow
	AtPure
	AtThunk
	AtConstructor
	AtDestructor
	AtIgnore
	attributeEnd

	modifierStart
	ModVolatile
	ModLazyThread
	ModThreadMode
	ModAtomic
	modifierEnd
)

var keywords = map[string]Kind{
	"fn": KwFn, "asmfn": KwAsmFn, "intrinsic": KwIntrinsic,
	"struct": KwStruct, "enum": KwEnum, "type": KwType,
	"local": KwLocal, "const": KwConst, "static": KwStatic, "mut": KwMut,
	"if": KwIf, "elif": KwElif, "else": KwElse,
	"while": KwWhile, "for": KwFor, "loop": KwLoop,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn,
	"pass": KwPass, "unreachable": KwUnreachable,
	"new": KwNew, "fixed": KwFixed, "deref": KwDeref, "asm": KwAsm,
	"alloc": KwAlloc, "load": KwLoad, "write": KwWrite, "address": KwAddress,
	"sizeof": KwSizeof, "alignof": KwAlignof, "halloc": KwHalloc,
	"memset": KwMemset, "memmove": KwMemmove, "memcpy": KwMemcpy,
	"true": KwTrue, "false": KwFalse, "nullptr": KwNullptr, "as": KwAs,
	"and": KwAnd, "or": KwOr, "import": KwImport,
	"ptr": KwPtr, "array": KwArray, "void": KwVoid, "bool": KwBool,
	"char": KwChar, "addr": KwAddr, "str": KwStr,
}

var attributes = map[string]Kind{
	"public": AtPublic, "extern": AtExtern, "convention": AtConvention,
	"linkage": AtLinkage, "alwaysinline": AtAlwaysInline, "noinline": AtNoInline,
	"inlinehint": AtInlineHint, "hot": AtHot, "minsize": AtMinSize,
	"safestack": AtSafeStack, "strongstack": AtStrongStack, "weakstack": AtWeakStack,
	"precisefloats": AtPreciseFloats, "nounwind": AtNoUnwind, "optfuzzing": AtOptFuzzing,
	"packed": AtPacked, "heap": AtHeap, "stack": AtStack,
	"asmsyntax": AtAsmSyntax, "asmsideeffects": AtAsmSideEffects,
	"asmalignstack": AtAsmAlignStack, "asmthrow": AtAsmThrow,
	"pure": AtPure, "thunk": AtThunk, "constructor": AtConstructor,
	"destructor": AtDestructor, "ignore": AtIgnore,
}

var modifiers = map[string]Kind{
	"volatile": ModVolatile, "lazythread": ModLazyThread,
	"threadmode": ModThreadMode, "atomic": ModAtomic,
}

// LookupKeyword returns the keyword kind for lexeme, if any.
func LookupKeyword(lexeme string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(lexeme)]
	return k, ok
}

// LookupAttribute returns the attribute-name kind for lexeme, if any.
func LookupAttribute(lexeme string) (Kind, bool) {
	k, ok := attributes[strings.ToLower(lexeme)]
	return k, ok
}

// LookupModifier returns the modifier-name kind for lexeme, if any.
func LookupModifier(lexeme string) (Kind, bool) {
	k, ok := modifiers[strings.ToLower(lexeme)]
	return k, ok
}

func (k Kind) IsKeyword() bool   { return k > keywordStart && k < keywordEnd }
func (k Kind) IsAttribute() bool { return k > attributeStart && k < attributeEnd }
func (k Kind) IsModifier() bool  { return k > modifierStart && k < modifierEnd }

// Token is a lexeme span as specified: raw/ascii lexeme, raw bytes, and the
// originating Span.
type Token struct {
	Kind       Kind
	RawLexeme  string
	ASCIILexeme string
	RawBytes   []byte
	Span       span.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.RawLexeme, t.Span)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

var kindNames = map[Kind]string{
	Illegal: "Illegal", EOF: "EOF", Integer: "Integer", Float: "Float",
	Char: "Char", Str: "Str", RawStr: "RawStr", Ident: "Ident",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Comma: ",", Semicolon: ";", Colon: ":",
	Arrow: "->", Dot: ".", At: "@",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Amp: "&", Pipe: "|", Caret: "^", Shl: "<<", Shr: ">>", Tilde: "~",
	Bang: "!", Assign: "=", Eq: "==", Ne: "!=", Lt: "<", Le: "<=",
	Gt: ">", Ge: ">=", AndAnd: "and", OrOr: "or",
	PlusPlus: "++", MinusMinus: "--",
}
