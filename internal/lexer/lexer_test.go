package lexer

import (
	"testing"
)

// collect scans the input to EOF and returns all tokens including trivia.
func collect(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
		if len(toks) > 10000 {
			t.Fatalf("lexer did not terminate on input %q", input)
		}
	}
}

func TestBasicTokens(t *testing.T) {
	input := `var x := 42; print "hi"`

	expected := []struct {
		typ     TokenType
		literal string
	}{
		{VAR, "var"},
		{IDENT, "x"},
		{ASSIGN, ":="},
		{INT, "42"},
		{SEMICOLON, ";"},
		{PRINT, "print"},
		{STRING, "hi"},
		{EOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Fatalf("token %d: expected type %s, got %s (%q)", i, exp.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != exp.literal {
			t.Fatalf("token %d: expected literal %q, got %q", i, exp.literal, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / := = /= < <= > >= ( ) { } [ ] , ; . .. =>`

	expected := []TokenType{
		PLUS, MINUS, ASTERISK, SLASH, ASSIGN, EQ, NOT_EQ,
		LESS, LESS_EQ, GREATER, GREATER_EQ,
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACK, RBRACK,
		COMMA, SEMICOLON, DOT, DOTDOT, ARROW, EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := "var if then else end while for loop func is exit return print true false none and or xor not in"

	expected := []TokenType{
		VAR, IF, THEN, ELSE, END, WHILE, FOR, LOOP, FUNC, IS,
		EXIT, RETURN, PRINT, TRUE, FALSE, NONE, AND, OR, XOR, NOT, IN, EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: expected %s, got %s", i, exp, tok.Type)
		}
	}
}

func TestTypeKeywords(t *testing.T) {
	input := "x is int y is real z is bool w is string"

	expected := []TokenType{
		IDENT, IS, TYPE_INT,
		IDENT, IS, TYPE_REAL,
		IDENT, IS, TYPE_BOOL,
		IDENT, IS, TYPE_STRING,
		EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: expected %s, got %s", i, exp, tok.Type)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{"0", INT, "0"},
		{"42", INT, "42"},
		{"3.14", REAL, "3.14"},
		{"10.0", REAL, "10.0"},
		{"7.", REAL, "7."},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.typ || tok.Literal != tt.literal {
			t.Errorf("input %q: expected %s %q, got %s %q", tt.input, tt.typ, tt.literal, tok.Type, tok.Literal)
		}
	}
}

func TestRangeNotConsumedAsReal(t *testing.T) {
	// `1..3` must lex as INT DOTDOT INT, not as a malformed real.
	l := New("1..3")

	expected := []struct {
		typ     TokenType
		literal string
	}{
		{INT, "1"},
		{DOTDOT, ".."},
		{INT, "3"},
		{EOF, ""},
	}

	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ || tok.Literal != exp.literal {
			t.Fatalf("token %d: expected %s %q, got %s %q", i, exp.typ, exp.literal, tok.Type, tok.Literal)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`'world'`, "world"},
		{`"it's"`, "it's"},
		{`'say "hi"'`, `say "hi"`},
		{`""`, ""},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Errorf("input %s: expected STRING, got %s", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %s: expected contents %q, got %q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestLineComment(t *testing.T) {
	l := New("// hello\n@")

	tok := l.NextToken()
	if tok.Type != COMMENT || tok.Literal != " hello" {
		t.Fatalf("expected COMMENT %q, got %s %q", " hello", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != NEWLINE {
		t.Fatalf("expected NEWLINE, got %s", tok.Type)
	}

	tok = l.NextToken()
	if tok.Type != ERROR {
		t.Fatalf("expected ERROR, got %s", tok.Type)
	}
	if tok.Line != 2 || tok.Col != 2 {
		t.Errorf("expected error position 2:2, got %d:%d", tok.Line, tok.Col)
	}
}

func TestBlockComment(t *testing.T) {
	l := New("/* multi\nline */ var")

	tok := l.NextToken()
	if tok.Type != COMMENT || tok.Literal != " multi\nline " {
		t.Fatalf("expected block COMMENT, got %s %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != VAR {
		t.Fatalf("expected var after block comment, got %s", tok.Type)
	}
}

func TestNewlinesEmitted(t *testing.T) {
	toks := collect(t, "var x := 1\nvar y := 2")

	newlines := 0
	for _, tok := range toks {
		if tok.Type == NEWLINE {
			newlines++
		}
	}
	if newlines != 1 {
		t.Errorf("expected 1 NEWLINE token, got %d", newlines)
	}
}

func TestErrorRecovery(t *testing.T) {
	// The lexer emits an ERROR token per bad character and keeps going.
	toks := collect(t, "@ # $ var")

	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}

	expected := []TokenType{ERROR, ERROR, ERROR, VAR, EOF}
	if len(types) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(types), types)
	}
	for i := range expected {
		if types[i] != expected[i] {
			t.Errorf("token %d: expected %s, got %s", i, expected[i], types[i])
		}
	}
}

func TestFuncDefinitionAndCall(t *testing.T) {
	input := "var f := func(x,y)=>x*y; print f(3,4)"

	expected := []TokenType{
		VAR, IDENT, ASSIGN, FUNC, LPAREN, IDENT, COMMA, IDENT, RPAREN,
		ARROW, IDENT, ASTERISK, IDENT, SEMICOLON,
		PRINT, IDENT, LPAREN, INT, COMMA, INT, RPAREN, EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestForLoopOverArray(t *testing.T) {
	input := "for i in [1,2,3] loop print i end"

	expected := []TokenType{
		FOR, IDENT, IN, LBRACK, INT, COMMA, INT, COMMA, INT, RBRACK,
		LOOP, PRINT, IDENT, END, EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: expected %s, got %s", i, exp, tok.Type)
		}
	}
}

func TestNotEqualVersusSlash(t *testing.T) {
	l := New("a / b /= c")

	expected := []TokenType{IDENT, SLASH, IDENT, NOT_EQ, IDENT, EOF}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: expected %s, got %s", i, exp, tok.Type)
		}
	}
}
