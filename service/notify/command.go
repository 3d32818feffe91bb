package notify

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Fallback text commands have the form `approve <id>` or `deny <id>`. The
// parser is strict: anything else is malformed and the caller logs and
// ignores it.

// Token codes (start at 1 to avoid clash with parsly.EOF).
const (
	tWhitespace = iota + 1
	tApprove
	tDeny
	tIdentifier
)

var (
	whitespaceToken = parsly.NewToken(tWhitespace, "Whitespace", matcher.NewWhiteSpace())
	approveToken    = parsly.NewToken(tApprove, "approve", matcher.NewFragment("approve"))
	denyToken       = parsly.NewToken(tDeny, "deny", matcher.NewFragment("deny"))
	idToken         = parsly.NewToken(tIdentifier, "Identifier", &idMatcher{})
)

// idMatcher matches approval request identifiers: hex letters, digits and
// hyphens.
type idMatcher struct{}

func (m *idMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		c := input[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '-' {
			break
		}
		matched++
	}
	return matched
}

// ParseCommand parses a fallback text command into a Response attributed to
// actor. It returns an error for anything that is not exactly a decision verb
// followed by an identifier.
func ParseCommand(text, actor string) (*Response, error) {
	cursor := parsly.NewCursor("", []byte(strings.ToLower(strings.TrimSpace(text))), 0)

	matched := cursor.MatchAny(approveToken, denyToken)
	var approve bool
	switch matched.Code {
	case approveToken.Code:
		approve = true
	case denyToken.Code:
		approve = false
	default:
		return nil, fmt.Errorf("malformed command %q: expected approve or deny", text)
	}

	matched = cursor.MatchAfterOptional(whitespaceToken, idToken)
	if matched.Code != idToken.Code {
		return nil, cursor.NewError(idToken)
	}
	id := matched.Text(cursor)

	// trailing garbage makes the command ambiguous – reject it
	matched = cursor.MatchAfterOptional(whitespaceToken, idToken)
	if matched.Code == idToken.Code {
		return nil, fmt.Errorf("malformed command %q: unexpected trailing input", text)
	}

	return &Response{ApprovalID: id, Approve: approve, Actor: actor}, nil
}
