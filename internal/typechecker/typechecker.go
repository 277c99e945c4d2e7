// Package typechecker implements the push-down inference pass from
// spec.md §4.4: every expression's Type field is filled in from the
// expected type flowing down from its syntactic context, falling back to
// bottom-up inference at leaves. The type checker never panics; every
// conformance failure is appended to a diagnostic.Bag and checking
// continues so a single compile reports every mismatch.
package typechecker

import (
	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// Checker walks one file's declarations against the symbol table. Locals
// and parameters are re-declared as the checker descends each function
// body, mirroring the parser's own push/pop discipline (internal/parser's
// parseBlock), since symtab.Table's local scopes are popped back out as
// soon as parsing of a block finishes and don't survive to this pass.
type Checker struct {
	symbols *symtab.Table
	bag     diagnostic.Bag

	// retStack tracks the expected return type of the function currently
	// being checked, allowing nested blocks to validate `return` without
	// threading the function node through every statement visitor.
	retStack []types.Type
}

func New(symbols *symtab.Table) *Checker {
	return &Checker{symbols: symbols}
}

// Check type-checks every declaration in file and returns the accumulated
// diagnostics (possibly empty).
func (c *Checker) Check(file *ast.File) []diagnostic.Diagnostic {
	for _, d := range file.Decls {
		c.checkDecl(d)
	}
	return c.bag.All()
}

func (c *Checker) checkDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.Function:
		c.checkFunction(n)
	case *ast.AssemblerFunction:
		// Assembler functions have no Thrush body to check; their operand
		// constraints are validated by the parser and consumed verbatim by
		// codegen (spec.md §4.9.3).
	case *ast.Intrinsic:
		// No body: bound directly to a codegen builtin by name.
	case *ast.StructDecl:
		c.checkStructDecl(n)
	case *ast.EnumDecl:
		c.checkEnumDecl(n)
	case *ast.ConstDecl:
		c.checkConstOrStatic(n.Ty, n.Init, n.Span())
	case *ast.StaticDecl:
		if n.Init != nil {
			c.checkConstOrStatic(n.Ty, n.Init, n.Span())
		}
	case *ast.CustomType:
		// Nothing to check: the aliased type was already resolved by the
		// parser's parseType.
	case *ast.GlobalAssembler:
		// Verbatim template, nothing to type-check.
	}
}

func (c *Checker) checkConstOrStatic(declared types.Type, init ast.Expr, sp span.Span) {
	got := c.inferExpr(init, declared)
	if !types.IsUnresolved(declared) && !types.Conforms(got, declared) {
		c.bag.Errorf(diagnostic.ETypeMismatch, sp,
			"cannot initialize value of type %s with expression of type %s", declared, got)
	}
}

func (c *Checker) checkStructDecl(n *ast.StructDecl) {
	seen := map[string]bool{}
	for _, name := range n.FieldNames {
		if seen[name] {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "duplicate field %q in struct %s", name, n.Name)
		}
		seen[name] = true
	}
}

func (c *Checker) checkEnumDecl(n *ast.EnumDecl) {
	for _, v := range n.Variants {
		if v.Value != nil {
			got := c.inferExpr(v.Value, n.Underlying)
			if !types.Conforms(got, n.Underlying) {
				c.bag.Errorf(diagnostic.ETypeMismatch, v.Value.Span(),
					"enum variant %s.%s: value of type %s does not conform to underlying type %s",
					n.Name, v.Name, got, n.Underlying)
			}
		}
	}
}

func (c *Checker) checkFunction(fn *ast.Function) {
	if fn.Body == nil {
		return // prototype-only forward declaration
	}
	c.symbols.ResetParams()
	for _, p := range fn.Params {
		c.symbols.DeclareParam(&symtab.Symbol{Name: p.Name, Kind: symtab.KindParam, Type: p.Ty, Span: p.Span(), Mut: p.Mut})
	}
	c.retStack = append(c.retStack, fn.Ret)
	c.checkBlock(fn.Body)
	c.retStack = c.retStack[:len(c.retStack)-1]
}

func (c *Checker) currentReturn() types.Type {
	if len(c.retStack) == 0 {
		return nil
	}
	return c.retStack[len(c.retStack)-1]
}

func (c *Checker) checkBlock(b *ast.Block) {
	c.symbols.PushScope()
	defer c.symbols.PopScope()
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Local:
		c.checkLocal(n)
	case *ast.ConstDecl:
		c.checkConstOrStatic(n.Ty, n.Init, n.Span())
		c.symbols.DeclareLocal(&symtab.Symbol{Name: n.Name, Kind: symtab.KindLocalConst, Type: n.Ty, Span: n.Span()})
	case *ast.StaticDecl:
		if n.Init != nil {
			c.checkConstOrStatic(n.Ty, n.Init, n.Span())
		}
		c.symbols.DeclareLocal(&symtab.Symbol{Name: n.Name, Kind: symtab.KindLocalStatic, Type: n.Ty, Span: n.Span(), Mut: true})
	case *ast.Block:
		c.checkBlock(n)
	case *ast.If:
		c.checkIf(n)
	case *ast.While:
		c.checkWhile(n)
	case *ast.For:
		c.checkFor(n)
	case *ast.Loop:
		c.checkBlock(n.Body)
	case *ast.Break, *ast.Continue:
		// Loop-nesting legality was already enforced by the parser.
	case *ast.Return:
		c.checkReturn(n)
	case *ast.Mut:
		c.checkMut(n)
	case *ast.ExprStmt:
		c.inferExpr(n.Expr, nil)
	case *ast.Pass:
		// no-op statement
	case *ast.Unreachable:
		// always well-typed
	}
}

func (c *Checker) checkLocal(n *ast.Local) {
	if n.Init != nil {
		got := c.inferExpr(n.Init, n.DeclaredTy)
		if n.DeclaredTy != nil && !types.IsUnresolved(n.DeclaredTy) && !types.Conforms(got, n.DeclaredTy) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(),
				"local %q declared as %s but initialized with %s", n.Name, n.DeclaredTy, got)
		}
	}
	// spec.md §4.4 edge case: an undefined local (no initializer) is still
	// declared here so later references resolve; the linter diagnoses a
	// read before its first write.
	c.symbols.DeclareLocal(&symtab.Symbol{Name: n.Name, Kind: symtab.KindLocal, Type: n.DeclaredTy, Span: n.Span(), Mut: n.Mut})
}

func (c *Checker) checkIf(n *ast.If) {
	c.expectBool(n.Cond)
	c.checkBlock(n.Then)
	for _, arm := range n.Elifs {
		c.expectBool(arm.Cond)
		c.checkBlock(arm.Body)
	}
	if n.Else != nil {
		c.checkBlock(n.Else)
	}
}

func (c *Checker) checkWhile(n *ast.While) {
	if n.PreLocal != nil {
		c.checkLocal(n.PreLocal)
	}
	c.expectBool(n.Cond)
	c.checkBlock(n.Body)
}

func (c *Checker) checkFor(n *ast.For) {
	// Init/Cond/Step share one scope enclosing the body's own, mirroring
	// parser.parseFor.
	c.symbols.PushScope()
	defer c.symbols.PopScope()
	if n.Init != nil {
		c.checkLocal(n.Init)
	}
	if n.Cond != nil {
		c.expectBool(n.Cond)
	}
	if n.Step != nil {
		c.checkStmt(n.Step)
	}
	c.checkBlock(n.Body)
}

func (c *Checker) checkReturn(n *ast.Return) {
	want := c.currentReturn()
	if n.Value == nil {
		if want != nil && !types.Underlying(want).Equal(types.NewVoid(n.Span())) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "missing return value, function returns %s", want)
		}
		return
	}
	got := c.inferExpr(n.Value, want)
	if want != nil && !types.Conforms(got, want) {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "return expression has type %s, function returns %s", got, want)
	}
}

func (c *Checker) checkMut(n *ast.Mut) {
	target := c.inferExpr(n.Target, nil)
	if ref, ok := n.Target.(*ast.Reference); ok {
		if sym, found := c.symbols.Lookup(ref.Name); found && !sym.Mut {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot assign to immutable binding %q", ref.Name)
		}
	}
	got := c.inferExpr(n.Value, target)
	if !types.IsUnresolved(target) && !types.Conforms(got, target) {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot assign value of type %s to place of type %s", got, target)
	}
}

func (c *Checker) expectBool(e ast.Expr) {
	got := c.inferExpr(e, types.NewBool(e.Span()))
	if !types.Underlying(got).Equal(types.NewBool(e.Span())) {
		c.bag.Errorf(diagnostic.ETypeMismatch, e.Span(), "condition must be bool, found %s", got)
	}
}
