// Package attribute implements the Attribute and Modifier closed variants
// from spec.md §3, collected per-declaration into a Bag.
package attribute

import "github.com/thrushlang/thrushc-go/internal/span"

type Kind uint8

const (
	Public Kind = iota
	Extern
	Convention
	Linkage
	AlwaysInline
	NoInline
	InlineHint
	Hot
	MinSize
	SafeStack
	StrongStack
	WeakStack
	PreciseFloats
	NoUnwind
	OptFuzzing
	Packed
	Heap
	Stack
	AsmSyntax
	AsmSideEffects
	AsmAlignStack
	AsmThrow
	Pure
	Thunk
	Constructor
	Destructor
	Ignore
)

// Attribute carries provenance span plus an optional string argument
// (Extern(name), Convention(name), Linkage(kind,name), AsmSyntax(dialect)).
type Attribute struct {
	Kind Kind
	Arg  string
	Arg2 string
	Span span.Span
}

type ModKind uint8

const (
	Volatile ModKind = iota
	LazyThread
	ThreadMode
	AtomicOrdering
)

type ThreadModeValue uint8

const (
	InitialExec ThreadModeValue = iota
	GeneralDynamic
	LocalExec
	LocalDynamic
)

type AtomicOrderingValue uint8

const (
	OrderNone AtomicOrderingValue = iota
	OrderFree
	OrderRelax
	OrderGrab
	OrderDrop
	OrderSync
	OrderStrict
)

// Modifier is orthogonal to Attribute (spec.md §3).
type Modifier struct {
	Kind        ModKind
	ThreadMode  ThreadModeValue
	Atomic      AtomicOrderingValue
	Span        span.Span
}

// Bag collects the attributes/modifiers of one declaration and exposes the
// has_* predicates the parser and codegen query.
type Bag struct {
	attrs []Attribute
	mods  []Modifier
}

func NewBag() *Bag { return &Bag{} }

func (b *Bag) Add(a Attribute)   { b.attrs = append(b.attrs, a) }
func (b *Bag) AddMod(m Modifier) { b.mods = append(b.mods, m) }

func (b *Bag) All() []Attribute     { return b.attrs }
func (b *Bag) AllMods() []Modifier { return b.mods }

func (b *Bag) find(k Kind) (Attribute, bool) {
	for _, a := range b.attrs {
		if a.Kind == k {
			return a, true
		}
	}
	return Attribute{}, false
}

func (b *Bag) Has(k Kind) bool { _, ok := b.find(k); return ok }

func (b *Bag) HasPublic() bool  { return b.Has(Public) }
func (b *Bag) HasExtern() bool  { return b.Has(Extern) }
func (b *Bag) HasIgnore() bool  { return b.Has(Ignore) }
func (b *Bag) HasLinkage() bool { return b.Has(Linkage) }

func (b *Bag) ExternName() (string, bool) {
	a, ok := b.find(Extern)
	return a.Arg, ok
}

func (b *Bag) ConventionName() (string, bool) {
	a, ok := b.find(Convention)
	return a.Arg, ok
}

func (b *Bag) LinkageKind() (string, string, bool) {
	a, ok := b.find(Linkage)
	return a.Arg, a.Arg2, ok
}

func (b *Bag) FindMod(k ModKind) (Modifier, bool) {
	for _, m := range b.mods {
		if m.Kind == k {
			return m, true
		}
	}
	return Modifier{}, false
}

func (b *Bag) IsVolatile() bool { _, ok := b.FindMod(Volatile); return ok }
