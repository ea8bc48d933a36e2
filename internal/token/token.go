package token

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string      // Raw source text of the token
	Literal interface{} // Parsed value for literals (int64, float64, string, bool)
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers and literals
	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"

	// Operators
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	POWER    = "**"

	LT     = "<"
	GT     = ">"
	LTE    = "<="
	GTE    = ">="
	EQ     = "=="
	NOT_EQ = "!="

	BANG      = "!"
	AND       = "&&"
	OR        = "||"
	AMPERSAND = "&"
	PIPE      = "|"

	LPAREN = "("
	RPAREN = ")"
	COMMA  = ","

	// Keywords
	TRUE  = "TRUE"
	FALSE = "FALSE"
	NOT   = "NOT"
)

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
	"True":  TRUE,
	"False": FALSE,
	"not":   NOT,
	"and":   AND,
	"or":    OR,
}

// LookupIdent maps an identifier lexeme to its keyword token type, or IDENT
// if it is not a keyword. The Python-style spellings True/False/and/or/not
// are accepted because annotation strings in the wild use both.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
