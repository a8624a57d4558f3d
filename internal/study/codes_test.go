package study

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"P014", "P014"},
		{"p014", "P014"},
		{"014", "P014"},
		{" 42 ", "P42"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.in); got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCodeBookPatternOnly(t *testing.T) {
	b, err := NewCodeBook("", nil, nil)
	if err != nil {
		t.Fatalf("NewCodeBook: %v", err)
	}
	accepted := []string{"P014", "p014", "014", "P9999", "42"}
	for _, in := range accepted {
		if _, err := b.Verify(in); err != nil {
			t.Errorf("Verify(%q) rejected: %v", in, err)
		}
	}
	rejected := []string{"", "P1", "P12345", "abc", "P01a", "P 14"}
	for _, in := range rejected {
		if code, err := b.Verify(in); err == nil {
			t.Errorf("Verify(%q) accepted as %q, want rejected", in, code)
		}
	}
}

func TestCodeBookExplicitCodes(t *testing.T) {
	b, err := NewCodeBook("", []string{"p042"}, nil)
	if err != nil {
		t.Fatalf("NewCodeBook: %v", err)
	}
	code, err := b.Verify("042")
	if err != nil || code != "P042" {
		t.Fatalf("Verify(042) = (%q, %v), want (P042, nil)", code, err)
	}
	if _, err := b.Verify("P043"); err == nil {
		t.Fatalf("Verify(P043) accepted, not in the code book")
	}
}

func TestCodeBookHashedCodes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("P042"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	b, err := NewCodeBook("", nil, []string{string(hash)})
	if err != nil {
		t.Fatalf("NewCodeBook: %v", err)
	}
	code, err := b.Verify("p042")
	if err != nil || code != "P042" {
		t.Fatalf("Verify(p042) = (%q, %v), want (P042, nil)", code, err)
	}
	if _, err := b.Verify("P041"); err == nil {
		t.Fatalf("Verify(P041) accepted, hash should not match")
	}
}

func TestVerifyRejectionIsCoded(t *testing.T) {
	b, err := NewCodeBook("", []string{"P042"}, nil)
	if err != nil {
		t.Fatalf("NewCodeBook: %v", err)
	}
	for _, in := range []string{"garbage", "P043"} {
		_, err := b.Verify(in)
		se, ok := AsServiceError(err)
		if !ok {
			t.Fatalf("Verify(%q) returned %T, want *ServiceError", in, err)
		}
		if se.Code != ErrorUnauthorized {
			t.Fatalf("Verify(%q) code = %s, want %s", in, se.Code, ErrorUnauthorized)
		}
	}
}

func TestCodeBookBadPattern(t *testing.T) {
	_, err := NewCodeBook("([", nil, nil)
	if err == nil {
		t.Fatalf("NewCodeBook with bad pattern succeeded")
	}
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("NewCodeBook error = %v, want invalid-coded ServiceError", err)
	}
	if se.Unwrap() == nil {
		t.Fatalf("pattern compile cause lost")
	}
}
