package lsp

import (
	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ConvertParseError transforms a parser error into LSP diagnostics for
// IDE display: missing braces, semicolons, unexpected tokens and other
// syntax problems.
func ConvertParseError(err error) []protocol.Diagnostic {
	if err == nil {
		return nil
	}

	line := uint32(0)
	char := uint32(0)
	message := err.Error()

	if pe, ok := err.(participle.Error); ok {
		pos := pe.Position()
		if pos.Line > 0 {
			line = uint32(pos.Line - 1)
		}
		if pos.Column > 0 {
			char = uint32(pos.Column - 1)
		}
		message = pe.Message()
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: char},
			End:   protocol.Position{Line: line, Character: char + 5},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("sable-parser"),
		Message:  message,
	}}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
