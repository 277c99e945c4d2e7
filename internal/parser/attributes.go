package parser

import (
	"github.com/thrushlang/thrushc-go/internal/attribute"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/token"
)

var attrKindOf = map[token.Kind]attribute.Kind{
	token.AtPublic: attribute.Public, token.AtExtern: attribute.Extern,
	token.AtConvention: attribute.Convention, token.AtLinkage: attribute.Linkage,
	token.AtAlwaysInline: attribute.AlwaysInline, token.AtNoInline: attribute.NoInline,
	token.AtInlineHint: attribute.InlineHint, token.AtHot: attribute.Hot,
	token.AtMinSize: attribute.MinSize, token.AtSafeStack: attribute.SafeStack,
	token.AtStrongStack: attribute.StrongStack, token.AtWeakStack: attribute.WeakStack,
	token.AtPreciseFloats: attribute.PreciseFloats, token.AtNoUnwind: attribute.NoUnwind,
	token.AtOptFuzzing: attribute.OptFuzzing, token.AtPacked: attribute.Packed,
	token.AtHeap: attribute.Heap, token.AtStack: attribute.Stack,
	token.AtAsmSyntax: attribute.AsmSyntax, token.AtAsmSideEffects: attribute.AsmSideEffects,
	token.AtAsmAlignStack: attribute.AsmAlignStack, token.AtAsmThrow: attribute.AsmThrow,
	token.AtPure: attribute.Pure, token.AtThunk: attribute.Thunk,
	token.AtConstructor: attribute.Constructor, token.AtDestructor: attribute.Destructor,
	token.AtIgnore: attribute.Ignore,
}

// argTakingAttrs are the `@name(arg)` / `@name(arg, arg2)` forms.
var argTakingAttrs = map[token.Kind]int{
	token.AtExtern: 1, token.AtConvention: 1, token.AtLinkage: 2, token.AtAsmSyntax: 1,
}

// parseAttributes parses zero or more `@name(arg)` entries into a Bag,
// stopping at the first token that is not `@`.
func (p *Parser) parseAttributes() *attribute.Bag {
	bag := attribute.NewBag()
	for p.at(token.At) {
		p.advance()
		kindTok := p.cur()
		kind, ok := attrKindOf[kindTok.Kind]
		if !ok {
			p.bag.Errorf(diagnostic.ESyntaxUnexpected, kindTok.Span, "unknown attribute %q", kindTok.RawLexeme)
			p.advance()
			continue
		}
		p.advance()
		a := attribute.Attribute{Kind: kind, Span: kindTok.Span}
		if n, wants := argTakingAttrs[kindTok.Kind]; wants {
			p.expect(token.LParen, "expected '(' after attribute name")
			if p.at(token.Str) {
				a.Arg = string(p.advance().RawBytes)
			} else if p.at(token.Ident) {
				a.Arg = p.advance().RawLexeme
			}
			if n == 2 && p.at(token.Comma) {
				p.advance()
				if p.at(token.Str) {
					a.Arg2 = string(p.advance().RawBytes)
				} else if p.at(token.Ident) {
					a.Arg2 = p.advance().RawLexeme
				}
			}
			p.expect(token.RParen, "expected ')' closing attribute argument list")
		}
		bag.Add(a)
	}
	return bag
}

var modKindOf = map[token.Kind]attribute.ModKind{
	token.ModVolatile:   attribute.Volatile,
	token.ModLazyThread: attribute.LazyThread,
	token.ModThreadMode: attribute.ThreadMode,
	token.ModAtomic:     attribute.AtomicOrdering,
}

// parseModifiers parses thread/atomic/volatile modifiers, collected
// separately from attributes per spec.md §3.
func (p *Parser) parseModifiers() *attribute.Bag {
	bag := attribute.NewBag()
	for {
		k, ok := modKindOf[p.cur().Kind]
		if !ok {
			break
		}
		sp := p.cur().Span
		p.advance()
		m := attribute.Modifier{Kind: k, Span: sp}
		if k == attribute.ThreadMode || k == attribute.AtomicOrdering {
			if p.at(token.LParen) {
				p.advance()
				if p.at(token.Ident) {
					parseModifierArg(&m, p.advance().RawLexeme)
				}
				p.expect(token.RParen, "expected ')' closing modifier argument")
			}
		}
		bag.AddMod(m)
	}
	return bag
}

func parseModifierArg(m *attribute.Modifier, name string) {
	switch name {
	case "InitialExec":
		m.ThreadMode = attribute.InitialExec
	case "GeneralDynamic":
		m.ThreadMode = attribute.GeneralDynamic
	case "LocalExec":
		m.ThreadMode = attribute.LocalExec
	case "LocalDynamic":
		m.ThreadMode = attribute.LocalDynamic
	case "Free":
		m.Atomic = attribute.OrderFree
	case "Relax":
		m.Atomic = attribute.OrderRelax
	case "Grab":
		m.Atomic = attribute.OrderGrab
	case "Drop":
		m.Atomic = attribute.OrderDrop
	case "Sync":
		m.Atomic = attribute.OrderSync
	case "Strict":
		m.Atomic = attribute.OrderStrict
	}
}
