// Package debuginfo wraps tinygo.org/x/go-llvm's DIBuilder to attach
// DWARF debug info to a compiled module (spec.md §4.10): one compile
// unit per module, one subprogram per function, finalized once at the
// end of codegen.
package debuginfo

import (
	"path/filepath"

	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/ast"
)

// Emitter owns the DIBuilder for one compiled unit and the file/compile
// unit metadata every subprogram attaches to.
type Emitter struct {
	builder llvm.DIBuilder
	file    llvm.Metadata
	unit    llvm.Metadata
	voidTy  llvm.Metadata
	intTy   llvm.Metadata
}

// New creates the compile unit for sourcePath. producer names this
// compiler the way clang/rustc name themselves in their own DICompileUnit
// entries.
func New(mod llvm.Module, sourcePath string) *Emitter {
	b := llvm.NewDIBuilder(mod)
	dir, file := filepath.Split(sourcePath)
	diFile := b.CreateFile(file, dir)
	unit := b.CreateCompileUnit(llvm.DICompileUnit{
		Language:  llvm.DWLangC99,
		File:      file,
		Dir:       dir,
		Producer:  "thrushc",
		Optimized: false,
	})
	return &Emitter{
		builder: b,
		file:    diFile,
		unit:    unit,
		voidTy:  llvm.Metadata{},
		intTy: b.CreateBasicType(llvm.DIBasicType{
			Name:       "int",
			SizeInBits: 32,
			Encoding:   llvm.DW_ATE_signed,
		}),
	}
}

// AttachSubprogram creates a DISubprogram for fn and sets it on llfn,
// giving every stack frame a symbol name/line number under a debugger.
func (e *Emitter) AttachSubprogram(llfn llvm.Value, fn *ast.Function) {
	line := int(fn.Span().Line)
	paramTypes := make([]llvm.Metadata, len(fn.Params)+1)
	paramTypes[0] = e.intTy // return type slot; refined per-function types are out of scope for line-level debugging
	for i := range fn.Params {
		paramTypes[i+1] = e.intTy
	}
	subroutine := e.builder.CreateSubroutineType(llvm.DISubroutineType{
		File:       e.file,
		Parameters: paramTypes,
	})
	sp := e.builder.CreateFunction(e.unit, llvm.DIFunction{
		Name:         fn.Name,
		LinkageName:  fn.Name,
		File:         e.file,
		Line:         line,
		ScopeLine:    line,
		Type:         subroutine,
		IsDefinition: fn.Body != nil,
	})
	llfn.SetSubprogram(sp)
}

// Finalize must run once per module after every function body has been
// emitted; DIBuilder defers resolving forward metadata references until
// this call.
func (e *Emitter) Finalize() {
	e.builder.Finalize()
}
