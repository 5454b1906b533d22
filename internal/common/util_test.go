package common

import (
	"strings"
	"testing"
)

// ---------- MakeRandAlphanumericString ----------

func TestMakeRandAlphanumericString_LengthAndCharset(t *testing.T) {
	const n = 32
	s, err := MakeRandAlphanumericString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n {
		t.Fatalf("expected length %d, got %d", n, len(s))
	}
	for _, c := range s {
		if !strings.ContainsRune(alphanumeric, c) {
			t.Fatalf("unexpected character %q in %q", c, s)
		}
	}
}

func TestMakeRandAlphanumericString_ZeroLength(t *testing.T) {
	s, err := MakeRandAlphanumericString(0)
	if err != nil {
		t.Fatalf("unexpected error for length=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for length=0, got %q", s)
	}
}

func TestMakeRandAlphanumericString_EntropyHint(t *testing.T) {
	const n = 32
	a, err := MakeRandAlphanumericString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MakeRandAlphanumericString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Logf("warning: two MakeRandAlphanumericString(%d) results are identical; extremely unlikely", n)
	}
}
