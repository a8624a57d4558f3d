package study

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCodePattern matches the codes handed out to participants: 2-4
// digits with an optional leading P, any case (P014, p014, 014).
const DefaultCodePattern = `^[Pp]?\d{2,4}$`

// NormalizeCode maps accepted spellings of a participant code onto the
// canonical upper-case P-prefixed form that is written to the data file.
func NormalizeCode(text string) string {
	t := strings.ToUpper(strings.TrimSpace(text))
	if t == "" {
		return ""
	}
	if !strings.HasPrefix(t, "P") {
		t = "P" + t
	}
	return t
}

// CodeBook holds the participant codes a deployment accepts. Codes may be
// listed in clear, as bcrypt hashes (so the config file never carries the
// clear code set), or omitted entirely, in which case any code matching the
// pattern is admitted.
type CodeBook struct {
	pattern *regexp.Regexp
	codes   map[string]struct{}
	hashes  []string
}

func NewCodeBook(pattern string, codes, hashes []string) (*CodeBook, error) {
	if pattern == "" {
		pattern = DefaultCodePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &ServiceError{Code: ErrorInvalid, Message: fmt.Sprintf("compile code pattern %q", pattern), Err: err}
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[NormalizeCode(c)] = struct{}{}
	}
	return &CodeBook{pattern: re, codes: set, hashes: hashes}, nil
}

// Verify checks text against the accepted participant codes and returns the
// canonical form. Rejections carry ErrorUnauthorized. Retries are unlimited;
// this is a closed research code, not a public secret.
func (b *CodeBook) Verify(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" || !b.pattern.MatchString(t) {
		return "", NewUnauthorizedError("unrecognized participant code")
	}
	code := NormalizeCode(t)
	if len(b.codes) == 0 && len(b.hashes) == 0 {
		return code, nil
	}
	if _, ok := b.codes[code]; ok {
		return code, nil
	}
	for _, h := range b.hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(code)) == nil {
			return code, nil
		}
	}
	return "", NewUnauthorizedError("unrecognized participant code")
}
