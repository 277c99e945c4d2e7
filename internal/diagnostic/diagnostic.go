// Package diagnostic carries spans and renders contextual source snippets,
// the shared "logging" sink for every pass in the pipeline (spec.md §7).
package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/thrushlang/thrushc-go/internal/span"
)

type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal // FrontEndBug / BackEndBug
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "internal error"
	}
}

// Code is one of the closed E00xx identifiers from spec.md §7.
type Code string

const (
	ELexNumeric      Code = "E0001"
	ESyntaxUnexpected Code = "E0002"
	ETypeMismatch    Code = "E0019"
	EScopeUndeclared Code = "E0028"
	EAddrNotAllocated1 Code = "E0007"
	EAddrNotAllocated2 Code = "E0008"
	EInternalFront   Code = "FrontEndBug"
	EInternalBack    Code = "BackEndBug"
)

// Diagnostic is one user-visible finding.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Span     span.Span
	Message  string
	Help     string
	Note     string
}

func New(sev Severity, code Code, sp span.Span, message string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Span: sp, Message: message}
}

func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Note = note
	return d
}

// Bag is the append-only diagnostic accumulator threaded through a pass.
// Passes never panic on a recoverable finding: they append here and keep going.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Push(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Errorf(code Code, sp span.Span, format string, args ...any) {
	b.Push(New(SeverityError, code, sp, fmt.Sprintf(format, args...)))
}

func (b *Bag) Warnf(code Code, sp span.Span, format string, args ...any) {
	b.Push(New(SeverityWarning, code, sp, fmt.Sprintf(format, args...)))
}

func (b *Bag) All() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

func (b *Bag) Merge(other *Bag) {
	b.items = append(b.items, other.items...)
}

// Render prints every diagnostic in `kind file:line:col` + caret-underlined
// snippet + help + optional note form.
func (b *Bag) Render(w io.Writer, sources map[string][]byte) {
	for _, d := range b.items {
		fmt.Fprintf(w, "%s %s: %s\n", d.Severity, d.Span, d.Message)
		if src, ok := sources[d.Span.File]; ok {
			if line, ok := sourceLine(src, d.Span.Line); ok {
				fmt.Fprintf(w, "  %s\n", line)
				fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", int(d.Span.StartCol)), caret(d.Span))
			}
		}
		if d.Help != "" {
			fmt.Fprintf(w, "  help: %s\n", d.Help)
		}
		if d.Note != "" {
			fmt.Fprintf(w, "  note: %s\n", d.Note)
		}
	}
}

func caret(sp span.Span) string {
	n := int(sp.EndCol) - int(sp.StartCol)
	if n < 1 {
		n = 1
	}
	return strings.Repeat("^", n)
}

func sourceLine(src []byte, line uint32) (string, bool) {
	lines := strings.Split(string(src), "\n")
	if int(line) >= len(lines) {
		return "", false
	}
	return lines[line], true
}
