package parser

import "github.com/thrushlang/thrushc-go/internal/token"

// forwardPass registers every top-level declaration's name and signature
// with empty bodies, so the full pass can resolve calls to functions (and
// references to structs/enums) that appear lexically before their
// definition (spec.md §4.3 "Forward-declaration pass").
func (p *Parser) forwardPass() {
	for !p.at(token.EOF) {
		p.parseTopLevel(false)
	}
}
