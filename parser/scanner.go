package parser

// scanState is the state of the quote/comment automaton shared by block
// isolation and braced-expression extraction.
//
//	state          input                  next state
//	Normal         '  "  `                SingleQuote / DoubleQuote / Backtick
//	Normal         //  (line comments on) LineComment
//	Normal         /*  (block comments)   BlockComment
//	quoted         \                      Escaped (resume = quoted)
//	quoted         matching quote         Normal
//	Single/Double  '\n'                   Normal (unterminated literal)
//	Escaped        any byte               resume
//	LineComment    '\n'                   Normal
//	BlockComment   */                     Normal
//
// Delimiters (closing tags, braces, parens) only count in Normal.
type scanState int

const (
	stateNormal scanState = iota
	stateSingleQuote
	stateDoubleQuote
	stateBacktick
	stateLineComment
	stateBlockComment
	stateEscaped
)

var scanStateNames = [...]string{
	stateNormal:       "Normal",
	stateSingleQuote:  "InSingleQuote",
	stateDoubleQuote:  "InDoubleQuote",
	stateBacktick:     "InBacktick",
	stateLineComment:  "InLineComment",
	stateBlockComment: "InBlockComment",
	stateEscaped:      "Escaped",
}

func (s scanState) String() string { return scanStateNames[s] }

// scanMode selects which comment syntaxes the automaton recognizes.
type scanMode struct {
	lineComments  bool
	blockComments bool
}

var (
	scriptMode = scanMode{lineComments: true, blockComments: true}
	// CSS has no line comments: "url(http://x)" must not start one.
	styleMode = scanMode{blockComments: true}
	exprMode  = scanMode{}
)

type lexScanner struct {
	mode   scanMode
	state  scanState
	resume scanState
}

// inCode reports whether the automaton is outside strings and comments.
func (s *lexScanner) inCode() bool { return s.state == stateNormal }

// advance consumes src[i] (peeking at src[i+1] for two-byte tokens) and
// returns how many bytes were consumed.
func (s *lexScanner) advance(src string, i int) int {
	c := src[i]
	var next byte
	if i+1 < len(src) {
		next = src[i+1]
	}

	switch s.state {
	case stateNormal:
		switch {
		case c == '\'':
			s.state = stateSingleQuote
		case c == '"':
			s.state = stateDoubleQuote
		case c == '`':
			s.state = stateBacktick
		case c == '/' && next == '/' && s.mode.lineComments:
			s.state = stateLineComment
			return 2
		case c == '/' && next == '*' && s.mode.blockComments:
			s.state = stateBlockComment
			return 2
		}
	case stateSingleQuote, stateDoubleQuote, stateBacktick:
		switch {
		case c == '\\':
			s.resume = s.state
			s.state = stateEscaped
		case c == closingQuote(s.state):
			s.state = stateNormal
		case c == '\n' && s.state != stateBacktick:
			s.state = stateNormal
		}
	case stateEscaped:
		s.state = s.resume
	case stateLineComment:
		if c == '\n' {
			s.state = stateNormal
		}
	case stateBlockComment:
		if c == '*' && next == '/' {
			s.state = stateNormal
			return 2
		}
	}
	return 1
}

func closingQuote(s scanState) byte {
	switch s {
	case stateSingleQuote:
		return '\''
	case stateDoubleQuote:
		return '"'
	case stateBacktick:
		return '`'
	}
	return 0
}

// findUnquoted returns the offset of the first occurrence of needle at or
// after from that starts while the automaton is in Normal, or -1.
func findUnquoted(src string, from int, needle string, mode scanMode) int {
	s := lexScanner{mode: mode}
	for i := from; i < len(src); {
		if s.inCode() && len(src)-i >= len(needle) && src[i:i+len(needle)] == needle {
			return i
		}
		i += s.advance(src, i)
	}
	return -1
}
