package script

import "strings"

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNewline
	tokDirective // @name, text holds the name
	tokString    // "..." with escapes decoded
	tokNumber    // 42, 0.5
	tokDuration  // 500ms, 1.5s
	tokDimension // 80x24
	tokWait      // ~500ms, ~2s, ~300
	tokArrow     // ->
	tokEnter     // >>
	tokIdent     // key, hide, show, screenshot, marker, require, true, false
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1, col: 1}
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

// scan tokenizes the whole source. Comments are stripped here so the
// parser never sees them; an unterminated block comment is fatal.
func (s *scanner) scan() ([]token, error) {
	var tokens []token
	for s.pos < len(s.src) {
		line, col := s.line, s.col
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			s.advance()
		case c == '\n':
			s.advance()
			tokens = append(tokens, token{kind: tokNewline, line: line, col: col})
		case c == '/' && s.peekAt(1) == '/':
			for s.pos < len(s.src) && s.peek() != '\n' {
				s.advance()
			}
		case c == '/' && s.peekAt(1) == '*':
			s.advance()
			s.advance()
			if err := s.skipBlockComment(line, col); err != nil {
				return nil, err
			}
		case c == '@':
			s.advance()
			name := s.readWord()
			if name == "" {
				return nil, parseErrorf(line, col, "expected directive name after '@'")
			}
			tokens = append(tokens, token{kind: tokDirective, text: name, line: line, col: col})
		case c == '"':
			text, err := s.readString(line, col)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text, line: line, col: col})
		case c == '-' && s.peekAt(1) == '>':
			s.advance()
			s.advance()
			tokens = append(tokens, token{kind: tokArrow, line: line, col: col})
		case c == '>' && s.peekAt(1) == '>':
			s.advance()
			s.advance()
			tokens = append(tokens, token{kind: tokEnter, line: line, col: col})
		case c == '~':
			s.advance()
			text := s.readNumberWithSuffix()
			if text == "" {
				return nil, parseErrorf(line, col, "expected duration after '~'")
			}
			tokens = append(tokens, token{kind: tokWait, text: text, line: line, col: col})
		case c >= '0' && c <= '9':
			tok, err := s.scanNumber(line, col)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case isWordByte(c):
			word := s.readWord()
			tokens = append(tokens, token{kind: tokIdent, text: word, line: line, col: col})
		default:
			return nil, parseErrorf(line, col, "unexpected character %q", string(rune(c)))
		}
	}
	tokens = append(tokens, token{kind: tokEOF, line: s.line, col: s.col})
	return tokens, nil
}

func (s *scanner) skipBlockComment(line, col int) error {
	for s.pos < len(s.src) {
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.advance()
			s.advance()
			return nil
		}
		s.advance()
	}
	return parseErrorf(line, col, "unterminated block comment")
}

func (s *scanner) readString(line, col int) (string, error) {
	s.advance() // opening quote
	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.peek()
		switch c {
		case '"':
			s.advance()
			return sb.String(), nil
		case '\n':
			return "", parseErrorf(line, col, "unterminated string")
		case '\\':
			s.advance()
			if s.pos >= len(s.src) {
				return "", parseErrorf(line, col, "unterminated string")
			}
			switch e := s.advance(); e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(s.advance())
		}
	}
	return "", parseErrorf(line, col, "unterminated string")
}

// scanNumber reads one of 80x24, 500ms, 1.5s, 42, 0.5. The suffix is
// validated later so position info stays with the token.
func (s *scanner) scanNumber(line, col int) (token, error) {
	text := s.readNumber()
	if s.peek() == 'x' && isDigit(s.peekAt(1)) {
		s.advance()
		rows := s.readNumber()
		return token{kind: tokDimension, text: text + "x" + rows, line: line, col: col}, nil
	}
	if isAlpha(s.peek()) {
		suffix := s.readWord()
		if suffix != "ms" && suffix != "s" {
			return token{}, parseErrorf(line, col, "invalid duration suffix %q (want ms or s)", suffix)
		}
		return token{kind: tokDuration, text: text + suffix, line: line, col: col}, nil
	}
	return token{kind: tokNumber, text: text, line: line, col: col}, nil
}

func (s *scanner) readNumber() string {
	start := s.pos
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.src[start:s.pos]
}

func (s *scanner) readNumberWithSuffix() string {
	start := s.pos
	s.readNumber()
	for isAlpha(s.peek()) {
		s.advance()
	}
	return s.src[start:s.pos]
}

func (s *scanner) readWord() string {
	start := s.pos
	for isWordByte(s.peek()) {
		s.advance()
	}
	return s.src[start:s.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-' || c == '_'
}
