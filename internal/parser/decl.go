package parser

import (
	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/attribute"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/token"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// fullPass parses every top-level declaration; by the time it runs, the
// forward-declaration pre-pass has already registered every top-level
// name, so mutually recursive references resolve (spec.md §4.3, testable
// property #8).
func (p *Parser) fullPass() []ast.Decl {
	var decls []ast.Decl
	for !p.at(token.EOF) {
		if d := p.parseTopLevel(true); d != nil {
			decls = append(decls, d)
		}
	}
	return decls
}

// parseTopLevel parses one top-level declaration. withBody controls whether
// function/struct/enum bodies are parsed (false during the forward pass).
func (p *Parser) parseTopLevel(withBody bool) ast.Decl {
	if p.at(token.KwImport) {
		p.advance()
		p.expect(token.Str, "expected a string path after import")
		p.expect(token.Semicolon, "expected ';' after import")
		return nil
	}
	attrs := p.parseAttributes()
	switch p.cur().Kind {
	case token.KwFn:
		return p.parseFunction(attrs, withBody)
	case token.KwAsmFn:
		return p.parseAssemblerFunction(attrs)
	case token.KwIntrinsic:
		return p.parseIntrinsic(attrs)
	case token.KwStruct:
		return p.parseStruct(attrs)
	case token.KwEnum:
		return p.parseEnum(attrs)
	case token.KwType:
		return p.parseCustomType()
	case token.KwAsm:
		return p.parseGlobalAssembler()
	case token.KwConst:
		return p.parseConstDecl()
	case token.KwStatic:
		return p.parseStaticDecl()
	default:
		p.bag.Errorf(diagnostic.ESyntaxUnexpected, p.cur().Span, "expected a top-level declaration, found %v", p.cur().Kind)
		p.synchronize()
		// synchronize stops in front of a closing delimiter; consume it so
		// the top-level loop always makes progress.
		if p.at(token.RBrace) || p.at(token.RParen) {
			p.advance()
		}
		return nil
	}
}

func (p *Parser) parseParamList() ([]*ast.FunctionParameter, bool) {
	p.expect(token.LParen, "expected '(' opening parameter list")
	var params []*ast.FunctionParameter
	variadic := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if p.at(token.Dot) && p.peek(1).Kind == token.Dot && p.peek(2).Kind == token.Dot {
			variadic = true
			p.advance()
			p.advance()
			p.advance()
			break
		}
		mut := false
		if p.at(token.KwMut) {
			mut = true
			p.advance()
		}
		name := p.expect(token.Ident, "expected parameter name")
		p.expect(token.Colon, "expected ':' before parameter type")
		ty := p.parseType()
		params = append(params, ast.NewFunctionParameter(name.Span, name.RawLexeme, ty, mut))
		if !p.at(token.RParen) {
			p.expect(token.Comma, "expected ',' between parameters")
		}
	}
	p.expect(token.RParen, "expected ')' closing parameter list")
	return params, variadic
}

func (p *Parser) parseFunction(attrs *attribute.Bag, withBody bool) *ast.Function {
	sp := p.cur().Span
	p.advance() // 'fn'
	name := p.expect(token.Ident, "expected function name")
	params, variadic := p.parseParamList()
	ret := types.Type(types.NewVoid(sp))
	if !p.at(token.LBrace) && !p.at(token.Semicolon) {
		ret = p.parseType()
	}
	fn := ast.NewFunction(sp, name.RawLexeme, params, ret, nil)
	fn.Attrs = attrs
	fn.Variadic = variadic
	p.symbols.DeclareFunction(&symtab.Symbol{
		Name: name.RawLexeme, Kind: symtab.KindFunction,
		Type: types.NewFn(sp, paramTypes(params), ret, types.FnRefMods{Variadic: variadic}), Span: sp,
	})
	if p.at(token.Semicolon) {
		p.advance()
		return fn
	}
	if !withBody {
		// Forward pass: register the signature, skip the body entirely.
		p.skipBalancedBraces()
		return fn
	}
	p.symbols.ResetParams()
	for _, param := range params {
		p.symbols.DeclareParam(&symtab.Symbol{Name: param.Name, Kind: symtab.KindParam, Type: param.Ty, Span: param.Span(), Mut: param.Mut})
	}
	p.fnDepth++
	fn.Body = p.parseBlock()
	p.fnDepth--
	return fn
}

func paramTypes(params []*ast.FunctionParameter) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = p.Ty
	}
	return out
}

// skipBalancedBraces advances past a `{ ... }` body without building an AST,
// used by the forward-declaration pre-pass (spec.md §4.3).
func (p *Parser) skipBalancedBraces() {
	if !p.at(token.LBrace) {
		return
	}
	depth := 0
	for {
		switch p.cur().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case token.EOF:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseAssemblerFunction(attrs *attribute.Bag) *ast.AssemblerFunction {
	sp := p.cur().Span
	p.advance() // 'asmfn'
	name := p.expect(token.Ident, "expected assembler function name")
	params, _ := p.parseParamList()
	ret := types.Type(types.NewVoid(sp))
	if !p.at(token.LBrace) {
		ret = p.parseType()
	}
	template, constraints, dialect := "", "", ast.Intel
	if p.at(token.LBrace) {
		p.advance()
		if p.at(token.Str) {
			template = string(p.advance().RawBytes)
		}
		if p.at(token.Colon) {
			p.advance()
			if p.at(token.Str) {
				constraints = string(p.advance().RawBytes)
			}
		}
		p.expect(token.RBrace, "expected '}' closing assembler function body")
	}
	for _, a := range attrs.All() {
		if a.Kind == attribute.AsmSyntax && a.Arg == "att" {
			dialect = ast.ATT
		}
	}
	fn := ast.NewAssemblerFunction(sp, name.RawLexeme, params, ret, template, constraints, dialect)
	fn.Attrs = attrs
	p.symbols.DeclareFunction(&symtab.Symbol{
		Name: name.RawLexeme, Kind: symtab.KindAsmFunction,
		Type: types.NewFn(sp, paramTypes(params), ret, types.FnRefMods{}), Span: sp,
	})
	return fn
}

func (p *Parser) parseIntrinsic(attrs *attribute.Bag) *ast.Intrinsic {
	sp := p.cur().Span
	p.advance() // 'intrinsic'
	name := p.expect(token.Ident, "expected intrinsic name")
	params, _ := p.parseParamList()
	ret := types.Type(types.NewVoid(sp))
	if !p.at(token.Semicolon) {
		ret = p.parseType()
	}
	p.expect(token.Semicolon, "expected ';' after intrinsic declaration")
	decl := ast.NewIntrinsic(sp, name.RawLexeme, params, ret)
	decl.Attrs = attrs
	p.symbols.DeclareFunction(&symtab.Symbol{
		Name: name.RawLexeme, Kind: symtab.KindIntrinsic,
		Type: types.NewFn(sp, paramTypes(params), ret, types.FnRefMods{}), Span: sp,
	})
	return decl
}

func (p *Parser) parseStruct(attrs *attribute.Bag) *ast.StructDecl {
	sp := p.cur().Span
	p.advance() // 'struct'
	name := p.expect(token.Ident, "expected struct name")
	mods := types.StructMods{Packed: attrs.Has(attribute.Packed)}
	p.expect(token.LBrace, "expected '{' opening struct body")
	var fieldNames []string
	var fieldTypes []types.Type
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname := p.expect(token.Ident, "expected field name")
		p.expect(token.Colon, "expected ':' before field type")
		fieldNames = append(fieldNames, fname.RawLexeme)
		fieldTypes = append(fieldTypes, p.parseType())
		if !p.at(token.RBrace) {
			p.expect(token.Comma, "expected ',' between struct fields")
		}
	}
	p.expect(token.RBrace, "expected '}' closing struct body")
	decl := ast.NewStructDecl(sp, name.RawLexeme, fieldNames, fieldTypes, mods)
	decl.Attrs = attrs
	p.symbols.DeclareGlobal(&symtab.Symbol{
		Name: name.RawLexeme, Kind: symtab.KindStruct,
		Type: types.NewStruct(sp, name.RawLexeme, fieldNames, fieldTypes, mods), Span: sp,
	})
	return decl
}

func (p *Parser) parseEnum(attrs *attribute.Bag) *ast.EnumDecl {
	sp := p.cur().Span
	p.advance() // 'enum'
	name := p.expect(token.Ident, "expected enum name")
	underlying := types.Type(types.NewInt(sp, types.S32))
	if p.at(token.Colon) {
		p.advance()
		underlying = p.parseType()
	}
	p.expect(token.LBrace, "expected '{' opening enum body")
	var variants []ast.EnumVariant
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vname := p.expect(token.Ident, "expected enum variant name")
		var value ast.Expr
		if p.at(token.Assign) {
			p.advance()
			value = p.parseExpr(bpLowest)
		}
		variants = append(variants, ast.EnumVariant{Name: vname.RawLexeme, Value: value})
		if !p.at(token.RBrace) {
			p.expect(token.Comma, "expected ',' between enum variants")
		}
	}
	p.expect(token.RBrace, "expected '}' closing enum body")
	decl := ast.NewEnumDecl(sp, name.RawLexeme, underlying, variants)
	decl.Attrs = attrs
	p.symbols.DeclareGlobal(&symtab.Symbol{Name: name.RawLexeme, Kind: symtab.KindEnum, Type: underlying, Span: sp})
	return decl
}

func (p *Parser) parseCustomType() *ast.CustomType {
	sp := p.cur().Span
	p.advance() // 'type'
	name := p.expect(token.Ident, "expected type alias name")
	p.expect(token.Assign, "expected '=' after type alias name")
	ty := p.parseType()
	p.expect(token.Semicolon, "expected ';' after type alias")
	decl := ast.NewCustomType(sp, name.RawLexeme, ty)
	p.symbols.DeclareGlobal(&symtab.Symbol{Name: name.RawLexeme, Kind: symtab.KindCustomType, Type: ty, Span: sp})
	return decl
}

func (p *Parser) parseGlobalAssembler() *ast.GlobalAssembler {
	sp := p.cur().Span
	p.advance() // 'asm'
	p.expect(token.LBrace, "expected '{' opening global assembler block")
	template := ""
	if p.at(token.Str) {
		template = string(p.advance().RawBytes)
	}
	p.expect(token.RBrace, "expected '}' closing global assembler block")
	return ast.NewGlobalAssembler(sp, template)
}
