package parser

import (
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/token"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// primitiveTypes is the closed table of primitive type-name lexemes, the
// same flavor of lookup the teacher uses for `supportedTypes`/NEON/SIMD
// type-size tables in main.go/neon_types.go/x86_simd_types.go.
var primitiveIntKinds = map[string]types.IntKind{
	"s8": types.S8, "s16": types.S16, "s32": types.S32, "s64": types.S64,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64,
	"u128": types.U128, "usize": types.USize, "ssize": types.SSize,
}

var primitiveFloatKinds = map[string]types.FloatKind{
	"f32": types.F32, "f64": types.F64, "f128": types.F128,
	"x86_80": types.X86_80, "ppc128": types.PPC128,
}

// parseType parses a type expression: primitives, `ptr`, `ptr[T]`,
// `array[T]`, `array[T; N]`, `fn[T1,T2,...] -> R`, `const T` (spec.md §4.3).
func (p *Parser) parseType() types.Type {
	sp := p.cur().Span
	switch p.cur().Kind {
	case token.KwConstTy, token.KwConst:
		p.advance()
		return types.NewConst(sp, p.parseType())
	case token.KwPtr:
		p.advance()
		if p.at(token.LBracket) {
			p.advance()
			inner := p.parseType()
			p.expect(token.RBracket, "expected ']' closing ptr[T]")
			return types.NewPtr(sp, inner)
		}
		return types.NewPtr(sp, nil)
	case token.KwArray:
		p.advance()
		p.expect(token.LBracket, "expected '[' after array")
		elem := p.parseType()
		if p.at(token.Semicolon) {
			p.advance()
			n := p.parseArraySize()
			p.expect(token.RBracket, "expected ']' closing array[T; N]")
			return types.NewFixedArray(sp, elem, n)
		}
		p.expect(token.RBracket, "expected ']' closing array[T]")
		return types.NewArray(sp, elem)
	case token.KwFn:
		p.advance()
		p.expect(token.LBracket, "expected '[' after fn")
		var params []types.Type
		for !p.at(token.RBracket) {
			params = append(params, p.parseType())
			if !p.at(token.RBracket) {
				p.expect(token.Comma, "expected ',' between fn parameter types")
			}
		}
		p.expect(token.RBracket, "expected ']' closing fn[...]")
		p.expect(token.Arrow, "expected '->' before fn return type")
		ret := p.parseType()
		return types.NewFn(sp, params, ret, types.FnRefMods{})
	case token.KwVoid:
		p.advance()
		return types.NewVoid(sp)
	case token.KwBool:
		p.advance()
		return types.NewBool(sp)
	case token.KwChar:
		p.advance()
		return types.NewChar(sp)
	case token.KwAddr:
		p.advance()
		return types.NewAddr(sp)
	case token.KwStr:
		p.advance()
		return types.NewStr(sp)
	case token.Ident:
		name := p.cur().RawLexeme
		if kind, ok := primitiveIntKinds[name]; ok {
			p.advance()
			return types.NewInt(sp, kind)
		}
		if kind, ok := primitiveFloatKinds[name]; ok {
			p.advance()
			return types.NewFloat(sp, kind)
		}
		// A struct/enum/custom-type name: resolved against the forward-pass
		// symbol table; Unresolved until then.
		p.advance()
		if sym, ok := p.symbols.Lookup(name); ok && sym.Type != nil {
			return sym.Type
		}
		return types.NewUnresolved(sp, name)
	default:
		p.bag.Errorf(diagnostic.ESyntaxUnexpected, sp, "expected a type expression, found %v", p.cur().Kind)
		p.advance()
		return types.NewUnresolved(sp, "malformed")
	}
}

// parseArraySize parses a literal integer array size that must fit in
// unsigned 32 bits (spec.md §4.3).
func (p *Parser) parseArraySize() uint32 {
	if !p.at(token.Integer) {
		p.bag.Errorf(diagnostic.ESyntaxUnexpected, p.cur().Span, "array size must be a literal integer")
		return 0
	}
	n := parseUintLiteral(p.cur().RawLexeme)
	p.advance()
	if n > 0xFFFFFFFF {
		p.bag.Errorf(diagnostic.ELexNumeric, p.prevSpan(), "array size does not fit in unsigned 32 bits")
		return 0
	}
	return uint32(n)
}

var _ = span.Zero
