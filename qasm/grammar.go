package qasm

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

//nolint:govet // participle grammar tags are not standard struct tags
type program struct {
	Pos        lexer.Position
	Version    string       `"OPENQASM" @(Float | Int) ";"`
	Statements []*statement `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type statement struct {
	Pos     lexer.Position
	Include *string     `  "include" @String ";"`
	Reg     *regDecl    `| @@`
	Gate    *gateDecl   `| @@`
	Opaque  *opaqueDecl `| @@`
	If      *ifStmt     `| @@`
	Op      *qop        `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type regDecl struct {
	Kind string `@("qreg" | "creg")`
	Name string `@Ident`
	Size int    `"[" @Int "]" ";"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type gateDecl struct {
	Pos    lexer.Position
	Name   string   `"gate" @Ident`
	Params []string `( "(" ( @Ident ( "," @Ident )* )? ")" )?`
	Args   []string `@Ident ( "," @Ident )*`
	Body   []*call  `"{" ( @@ ";" )* "}"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type opaqueDecl struct {
	Name   string   `"opaque" @Ident`
	Params []string `( "(" ( @Ident ( "," @Ident )* )? ")" )?`
	Args   []string `@Ident ( "," @Ident )* ";"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type ifStmt struct {
	Reg   string `"if" "(" @Ident`
	Index *int   `( "[" @Int "]" )?`
	Value int    `"==" @Int ")"`
	Op    *qop   `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type qop struct {
	Pos     lexer.Position
	Measure *measure `  @@`
	Reset   *arg     `| "reset" @@ ";"`
	Barrier []*arg   `| "barrier" @@ ( "," @@ )* ";"`
	Call    *call    `| @@ ";"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type measure struct {
	From *arg `"measure" @@`
	To   *arg `"->" @@ ";"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type call struct {
	Pos    lexer.Position
	Name   string  `@Ident`
	Params []*expr `( "(" ( @@ ( "," @@ )* )? ")" )?`
	Args   []*arg  `@@ ( "," @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type arg struct {
	Reg   string `@Ident`
	Index *int   `( "[" @Int "]" )?`
}

// Expressions, lowest precedence first.

//nolint:govet // participle grammar tags are not standard struct tags
type expr struct {
	Left  *term     `@@`
	Right []*opTerm `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type opTerm struct {
	Op   string `@("+" | "-")`
	Term *term  `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type term struct {
	Left  *factor     `@@`
	Right []*opFactor `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type opFactor struct {
	Op     string  `@("*" | "/")`
	Factor *factor `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type factor struct {
	Neg   *factor `  "-" @@`
	Power *power  `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type power struct {
	Base *primary `@@`
	Exp  *factor  `( "^" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type primary struct {
	Number *float64  `  @(Float | Int)`
	Pi     bool      `| @"pi"`
	Func   *funcCall `| @@`
	Ident  *string   `| @Ident`
	Sub    *expr     `| "(" @@ ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type funcCall struct {
	Name string `@("sin" | "cos" | "tan" | "exp" | "ln" | "sqrt")`
	Arg  *expr  `"(" @@ ")"`
}

// qasmLexer tokenizes OpenQASM 2.0 with the QSoF gate set.
var qasmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Float", Pattern: `(\d+\.\d*|\.\d+)([eE][-+]?\d+)?|\d+[eE][-+]?\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `->|==|[-+*/^(),;\[\]{}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// qasmParser is the participle parser for OpenQASM source.
var qasmParser = participle.MustBuild[program](
	participle.Lexer(qasmLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)
