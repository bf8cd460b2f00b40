// Package lang parses and interprets flow-language source: a small rule
// description language of directives, flags and rewrite instructions that
// compiles down to a rule.Set plus initial space contents.
package lang

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The flow language is line oriented but whitespace insensitive once
// tokenized. Flags carry their own bracketed arguments as a single token,
// which keeps them from colliding with the arrow operators and range
// selectors.
var flowLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Directive", Pattern: `@[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Regex", Pattern: `/(?:\\.|[^/\n])*/`},
	{Name: "Prompt", Pattern: `\{[^{}\n;]+\}`},
	{Name: "Flag", Pattern: `-[a-zA-Z_]+(?:\[[^\]\n]*\])?`},
	{Name: "Op", Pattern: `-->|->|>><<|>>|<<|><|>`},
	{Name: "Range", Pattern: `\[[^\]\n]*\]`},
	{Name: "String", Pattern: `"[^"\n]*"`},
	{Name: "Term", Pattern: `[A-Za-z0-9_]+`},
	{Name: "Punct", Pattern: `[(),;{}]`},
})

type flowFile struct {
	Statements []*statement `parser:"@@*"`
}

type statement struct {
	Directive   *directiveStmt `parser:"  @@"`
	Block       *blockStmt     `parser:"| @@"`
	GlobalFlags *flagsStmt     `parser:"| @@"`
	Instruction *instruction   `parser:"| @@"`
}

// directiveStmt is `@name(arg, ...);`. Arguments are raw terms or quoted
// strings and keep their source spelling until a directive handler needs
// them.
type directiveStmt struct {
	Name string   `parser:"@Directive '('"`
	Args []string `parser:"( @(Term|String) ( ',' @(Term|String) )* )? ')' ';'"`
}

// blockStmt distributes a parenthesized flag group over every statement in
// the braced body. Statement flags win over the group's.
type blockStmt struct {
	Flags      []string     `parser:"'(' @Flag* ')'"`
	Statements []*statement `parser:"'{' @@* '}'"`
}

// flagsStmt is a bare run of flags outside any instruction. They become the
// defaults for every rule in the file.
type flagsStmt struct {
	Flags []string `parser:"@Flag+"`
}

// instruction is `SELECTOR... OP TARGET... FLAGS... ;`. Deletion and
// reversal take no target; shifts take a numeric one.
type instruction struct {
	Selectors []*selectorTerm `parser:"@@+"`
	Operator  string          `parser:"@Op"`
	Targets   []string        `parser:"@Term*"`
	Flags     []string        `parser:"@Flag* ';'"`
}

type selectorTerm struct {
	Literal string `parser:"  @Term"`
	Regex   string `parser:"| @Regex"`
	Range   string `parser:"| @Range"`
	Prompt  string `parser:"| @Prompt"`
}

func (s *selectorTerm) String() string {
	switch {
	case s.Literal != "":
		return s.Literal
	case s.Regex != "":
		return s.Regex
	case s.Range != "":
		return s.Range
	default:
		return s.Prompt
	}
}

func (i *instruction) String() string {
	parts := make([]string, 0, len(i.Selectors)+1+len(i.Targets))
	for _, s := range i.Selectors {
		parts = append(parts, s.String())
	}
	parts = append(parts, i.Operator)
	parts = append(parts, i.Targets...)
	return strings.Join(parts, " ")
}

var flowParser = participle.MustBuild[flowFile](
	participle.Lexer(flowLexer),
	participle.Elide("Whitespace", "Comment"),
)

func parse(source string) (*flowFile, error) {
	return flowParser.ParseString("", source)
}
