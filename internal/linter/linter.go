// Package linter implements spec.md §4.5: a post-typecheck sweep that
// walks every declaration's body tracking which places are read, written,
// and declared-but-unused. Like the type checker, it re-declares each
// param/local into symtab.Table as it descends a function body, mirroring
// the parser's own push/pop discipline, since a block's local scope is
// popped back out as soon as parsing of that block finishes and doesn't
// survive to this pass.
package linter

import (
	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/symtab"
)

// Linter performs the unused-declaration, never-mutated-mut, and
// uninitialized-read sweep over a file already processed by the type
// checker (so every Reference/Call already resolved against symbols).
type Linter struct {
	symbols *symtab.Table
	bag     diagnostic.Bag

	// undefinedLocals tracks locals declared `local x: T;` (no
	// initializer) that have not yet been written to by a Mut, so a read
	// before the first write is diagnosed (spec.md §4.5 edge case).
	undefinedLocals map[*symtab.Symbol]bool

	// funcLocals accumulates every param/local symbol declared within the
	// function body currently being linted, reset at each *ast.Function and
	// fed to CheckNeverMutated once that function's body is fully linted.
	funcLocals []*symtab.Symbol
}

func New(symbols *symtab.Table) *Linter {
	return &Linter{symbols: symbols, undefinedLocals: map[*symtab.Symbol]bool{}}
}

func (l *Linter) Lint(file *ast.File) []diagnostic.Diagnostic {
	for _, d := range file.Decls {
		l.lintDecl(d)
	}
	l.checkUnusedGlobals()
	return l.bag.All()
}

func (l *Linter) lintDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.Function:
		if n.Body != nil {
			l.symbols.ResetParams()
			l.funcLocals = l.funcLocals[:0]
			for _, p := range n.Params {
				l.symbols.DeclareParam(&symtab.Symbol{Name: p.Name, Kind: symtab.KindParam, Type: p.Ty, Span: p.Span(), Mut: p.Mut})
			}
			l.lintBlock(n.Body)
			CheckNeverMutated(l.funcLocals, &l.bag)
		}
	case *ast.StaticDecl:
		if n.Init != nil {
			l.lintExpr(n.Init)
		}
	case *ast.ConstDecl:
		l.lintExpr(n.Init)
	}
}

func (l *Linter) lintBlock(b *ast.Block) {
	l.symbols.PushScope()
	defer l.symbols.PopScope()
	for _, s := range b.Stmts {
		l.lintStmt(s)
	}
}

func (l *Linter) lintStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Local:
		sym := &symtab.Symbol{Name: n.Name, Kind: symtab.KindLocal, Type: n.DeclaredTy, Span: n.Span(), Mut: n.Mut}
		if n.Undefined {
			l.undefinedLocals[sym] = true
		} else {
			l.lintExpr(n.Init)
		}
		l.symbols.DeclareLocal(sym)
		l.funcLocals = append(l.funcLocals, sym)
	case *ast.ConstDecl:
		l.lintExpr(n.Init)
		l.symbols.DeclareLocal(&symtab.Symbol{Name: n.Name, Kind: symtab.KindLocalConst, Type: n.Ty, Span: n.Span()})
	case *ast.StaticDecl:
		if n.Init != nil {
			l.lintExpr(n.Init)
		}
		sym := &symtab.Symbol{Name: n.Name, Kind: symtab.KindLocalStatic, Type: n.Ty, Span: n.Span(), Mut: true}
		l.symbols.DeclareLocal(sym)
		l.funcLocals = append(l.funcLocals, sym)
	case *ast.Block:
		l.lintBlock(n)
	case *ast.If:
		l.lintExpr(n.Cond)
		l.lintBlock(n.Then)
		for _, arm := range n.Elifs {
			l.lintExpr(arm.Cond)
			l.lintBlock(arm.Body)
		}
		if n.Else != nil {
			l.lintBlock(n.Else)
		}
	case *ast.While:
		if n.PreLocal != nil {
			l.lintStmt(n.PreLocal)
		}
		l.lintExpr(n.Cond)
		l.lintBlock(n.Body)
	case *ast.For:
		// Init/Cond/Step share one scope enclosing the body's own,
		// mirroring parser.parseFor.
		l.symbols.PushScope()
		defer l.symbols.PopScope()
		if n.Init != nil {
			l.lintStmt(n.Init)
		}
		if n.Cond != nil {
			l.lintExpr(n.Cond)
		}
		if n.Step != nil {
			l.lintStmt(n.Step)
		}
		l.lintBlock(n.Body)
	case *ast.Loop:
		l.lintBlock(n.Body)
	case *ast.Return:
		if n.Value != nil {
			l.lintExpr(n.Value)
		}
	case *ast.Mut:
		l.lintMut(n)
	case *ast.ExprStmt:
		l.lintExpr(n.Expr)
	}
}

// lintMut marks the target symbol Mutated and clears its undefined-read
// guard, since a write always precedes any subsequent read (spec.md §4.5
// edge case: "an uninitialized local read before its first write is an
// error").
func (l *Linter) lintMut(n *ast.Mut) {
	if ref, ok := n.Target.(*ast.Reference); ok {
		if sym, found := l.symbols.Lookup(ref.Name); found {
			sym.Mutated = true
			delete(l.undefinedLocals, sym)
		}
	} else {
		l.lintExpr(n.Target)
	}
	l.lintExpr(n.Value)
}

func (l *Linter) lintExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Reference:
		l.checkUninitializedRead(n)
	case *ast.BinaryOp:
		l.lintExpr(n.Left)
		l.lintExpr(n.Right)
	case *ast.UnaryOp:
		l.lintExpr(n.Operand)
		if n.Op == ast.OpPreInc || n.Op == ast.OpPreDec || n.Op == ast.OpPostInc || n.Op == ast.OpPostDec {
			if ref, ok := n.Operand.(*ast.Reference); ok {
				if sym, found := l.symbols.Lookup(ref.Name); found {
					sym.Mutated = true
				}
			}
		}
	case *ast.Group:
		l.lintExpr(n.Inner)
	case *ast.As:
		l.lintExpr(n.Operand)
	case *ast.Deref:
		l.lintExpr(n.Operand)
	case *ast.DirectRef:
		l.lintExpr(n.Operand)
	case *ast.Call:
		l.lintExpr(n.Callee)
		for _, a := range n.Args {
			l.lintExpr(a)
		}
	case *ast.IndirectCall:
		l.lintExpr(n.Callee)
		for _, a := range n.Args {
			l.lintExpr(a)
		}
	case *ast.Index:
		l.lintExpr(n.Base)
		l.lintExpr(n.Index)
	case *ast.Property:
		l.lintExpr(n.Base)
	case *ast.Constructor:
		for _, v := range n.Values {
			l.lintExpr(v)
		}
	case *ast.FixedArrayLit:
		for _, el := range n.Elems {
			l.lintExpr(el)
		}
	case *ast.ArrayLit:
		for _, el := range n.Elems {
			l.lintExpr(el)
		}
	case *ast.AsmValue:
		for _, op := range n.Operands {
			l.lintExpr(op)
		}
	case *ast.Builtin:
		for _, a := range n.Args {
			l.lintExpr(a)
		}
	case *ast.LLI:
		if n.Target != nil {
			l.lintExpr(n.Target)
		}
		if n.Value != nil {
			l.lintExpr(n.Value)
		}
	}
}

// checkUninitializedRead diagnoses a read of a `local x: T;` that has
// never been written to.
func (l *Linter) checkUninitializedRead(ref *ast.Reference) {
	sym, found := l.symbols.Lookup(ref.Name)
	if !found {
		return // already diagnosed by the type checker
	}
	if l.undefinedLocals[sym] {
		l.bag.Errorf(diagnostic.ETypeMismatch, ref.Span(), "use of %q before it is ever assigned a value", ref.Name)
	}
}

// checkUnusedGlobals warns on every module-scope declaration the type
// checker never marked Used, except `main`. Symbols carry no attributes,
// so @public/@extern/@ignore declarations are not exempted.
func (l *Linter) checkUnusedGlobals() {
	for _, sym := range l.symbols.AllGlobals() {
		if sym.Name == "main" {
			continue
		}
		if !sym.Used {
			l.bag.Warnf(diagnostic.ETypeMismatch, sym.Span, "%q is declared but never used", sym.Name)
		}
	}
}

// CheckNeverMutated reports every `mut`-qualified local/static that the
// program never actually wrote to, grounded on spec.md §4.5's
// never-mutated-mut warning. Exposed as a standalone function, taking an
// explicit symbol slice rather than walking symbols's live scope stack,
// because by the time a function body is fully linted its local scope has
// already been popped; lintDecl calls it once per *ast.Function with the
// locals it collected while linting that one body.
func CheckNeverMutated(symbols []*symtab.Symbol, bag *diagnostic.Bag) {
	for _, sym := range symbols {
		if sym.Mut && !sym.Mutated {
			bag.Warnf(diagnostic.ETypeMismatch, sym.Span, "%q is declared mut but never mutated", sym.Name)
		}
	}
}
