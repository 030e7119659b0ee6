// Splitting lines at spaces and quotes.

/* from https://www.iucr.org/resources/cif/spec/version1.1/cifsyntax
               character or string role
_ (underscore) identifies data name
#              identifies comment
'              delimits non-simple data values
"              delimits non-simple data values
; at beginning of line of text delimits non-simple data values
data_          identifies data block header (case-insensitive)
*/

package mmcif

import (
	"errors"
	"strings"
)

const (
	squote byte = '\''
	dquote byte = '"'
)

// iswhite only works for ascii spaces
var asciiSpace = [256]bool{
	'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true,
}

// iswhite returns true if a byte is on the list of white space characters.
func iswhite(b byte) bool {
	return asciiSpace[b]
}

// isquote not only checks if we have a quote character, but also
func isquote(b byte, qtype *byte) bool { // stores its type
	if b == squote || b == dquote { //     (single or double) so we can
		*qtype = b  //                      look for the corresponding
		return true //                      closing quote
	}
	return false
}

type sInfo struct { // Holds the state of the state functions
	err     error
	ret     []Token // This is what we will really return
	in      string
	nxtIndx int
	qtype   byte // type of quote
}
type sfn func(i int, c byte, s *sInfo) sfn // state function

func sfnInQuote(i int, c byte, sInfo *sInfo) sfn { // in quoted region
	if c == sInfo.qtype {
		return sfnExitQuote
	}
	if c == '\n' {
		sInfo.err = errors.New("unterminated quote")
		return sfnWhite
	}
	return sfnInQuote
}

func sfnExitQuote(i int, c byte, sInfo *sInfo) sfn {
	if iswhite(c) { // quote followed by white really ends a quoted region
		t := sInfo.in[sInfo.nxtIndx : i-1]
		sInfo.ret = append(sInfo.ret, Token{Text: t, Quoted: true})
		return sfnWhite
	}
	if c == sInfo.qtype { // 'a'' is still open
		return sfnExitQuote
	}
	return sfnInQuote // but if a character comes, we go back to quoted region
}

func sfnInText(i int, c byte, sInfo *sInfo) sfn {
	if iswhite(c) {
		t := sInfo.in[sInfo.nxtIndx:i]
		sInfo.ret = append(sInfo.ret, Token{Text: t})
		return sfnWhite
	}
	return sfnInText
}

// sfnComment eats the rest of the line.
func sfnComment(i int, c byte, sInfo *sInfo) sfn { return sfnComment }

func sfnWhite(i int, c byte, sInfo *sInfo) sfn { // in white space region
	switch {
	case iswhite(c):
		return sfnWhite
	case c == '#': // # at the start of a word is a comment
		return sfnComment
	case isquote(c, &sInfo.qtype):
		sInfo.nxtIndx = i + 1
		return sfnInQuote
	default:
		sInfo.nxtIndx = i
		return sfnInText
	}
}

// splitCifLine breaks a line into tokens. They are separated by spaces
// and matching quotes. A quote only starts a token at the start of a word
// and only ends one if white space follows, so a"b" and 'a'b' are single
// tokens.
// There is a small state machine with four states. When we leave text or
// a quote followed by a space, we save the word.
// A word starting with # outside quotes starts a comment, which runs to
// the end of the line. A # inside a word, like a#b, is just a character.
// Lines without any quotes go straight to strings.Fields.
func splitCifLine(in string) ([]Token, error) {
	if strings.IndexByte(in, squote) == -1 && strings.IndexByte(in, dquote) == -1 {
		f := strings.Fields(in)
		ret := make([]Token, 0, len(f))
		for _, s := range f {
			if s[0] == '#' {
				break
			}
			ret = append(ret, Token{Text: s})
		}
		return ret, nil
	}
	var sInfo = sInfo{in: in}
	state := sfnWhite
	for i := 0; i < len(in); i++ {
		state = state(i, in[i], &sInfo)
	}
	state(len(in), '\n', &sInfo) // end with newline, catches unterminated quotes
	if sInfo.err != nil {
		return nil, sInfo.err
	}
	return sInfo.ret, nil
}
