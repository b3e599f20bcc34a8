package lsp

import (
	"strings"

	"sable/grammar"
	"sable/token"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

// indexes into SemanticTokenTypes
const (
	tokType = iota
	tokFunction
	tokVariable
	tokKeyword
	tokNumber
	tokString
	tokComment
	tokOperator
)

// collectSemanticTokens lexes the source and classifies each token for
// editor highlighting. The classification is purely lexical; names
// default to "variable" unless they are reserved words or type names.
func collectSemanticTokens(path, source string) []SemanticToken {
	lex, err := grammar.SableLexer.Lex(path, strings.NewReader(source))
	if err != nil {
		return nil
	}

	symbols := grammar.SableLexer.Symbols()
	identType := symbols["Ident"]
	intType := symbols["Integer"]
	strType := symbols["String"]
	commentType := symbols["Comment"]
	operatorType := symbols["Operator"]

	var tokens []SemanticToken
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			break
		}

		kind := -1
		switch tok.Type {
		case identType:
			switch {
			case token.IsTypeName(tok.Value):
				kind = tokType
			case token.IsKeyword(tok.Value):
				kind = tokKeyword
			default:
				kind = tokVariable
			}
		case intType:
			kind = tokNumber
		case strType:
			kind = tokString
		case commentType:
			kind = tokComment
		case operatorType:
			kind = tokOperator
		}
		if kind < 0 {
			continue
		}

		tokens = append(tokens, SemanticToken{
			Line:      uint32(tok.Pos.Line - 1),
			StartChar: uint32(tok.Pos.Column - 1),
			Length:    uint32(len(tok.Value)),
			TokenType: kind,
		})
	}
	return tokens
}
