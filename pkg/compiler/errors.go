package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrSyntax is matched by every error the parser returns.
var ErrSyntax = errors.New("syntax error")

// SyntaxError is a grammar violation found while parsing. Line is the line of
// the token the parser was looking at when it gave up.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Error Sintáctico en línea %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Liner is implemented by errors that know their source line.
type Liner interface {
	SourceLine() int
}

func (e *SyntaxError) SourceLine() int { return e.Line }

var lineRe = regexp.MustCompile(`(?i)línea (\d+)`)

// ErrorLine extracts the 1-based source line an error refers to. Typed errors
// are asked directly; anything else is searched for a "línea <N>" marker.
func ErrorLine(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var l Liner
	if errors.As(err, &l) {
		return l.SourceLine(), true
	}
	m := lineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return n, true
}
