// SPDX-License-Identifier: Apache-2.0
package token

// Keywords of the sable surface language. The grammar matches them as
// bare identifiers; the LSP server uses the set for semantic tokens.
var Keywords = []string{
	"fn",
	"var",
	"if",
	"else",
	"while",
	"do",
	"for",
	"foreach",
	"foreach_reverse",
	"ref",
	"switch",
	"case",
	"default",
	"break",
	"continue",
	"return",
	"goto",
	"try",
	"catch",
	"finally",
	"throw",
	"synchronized",
	"volatile",
	"with",
	"cast",
	"asm",
	"true",
	"false",
}

// Types built into the language
var TypeNames = []string{
	"void", "bool",
	"i8", "i16", "i32", "i64",
	"u8", "u16", "u32", "u64",
	"string", "wstring", "dstring",
}

var keywordSet = func() map[string]bool {
	m := make(map[string]bool, len(Keywords))
	for _, k := range Keywords {
		m[k] = true
	}
	return m
}()

var typeSet = func() map[string]bool {
	m := make(map[string]bool, len(TypeNames))
	for _, t := range TypeNames {
		m[t] = true
	}
	return m
}()

// IsKeyword reports whether an identifier is reserved
func IsKeyword(s string) bool { return keywordSet[s] }

// IsTypeName reports whether an identifier names a built-in type
func IsTypeName(s string) bool { return typeSet[s] }
