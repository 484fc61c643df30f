package textnorm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", "   \t\n ", ""},
		{"case fold", "Elon MUSK", "elon musk"},
		{"collapse", "  Elon \t  Musk\n", "elon musk"},
		{"fullwidth", "Ｅｌｏｎ", "elon"},
		{"punctuation kept", "Mihir Doshi | LinkedIn", "mihir doshi | linkedin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " a ", "Elon  Musk", "ÉCOLE Normale", "ﬁnance", "Ｍｉｘｅｄ  Ｗｉｄｔｈ", "tab\tsep\nline",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSignificant(t *testing.T) {
	got := Significant("A Mihir  K Doshi", 1)
	want := []string{"mihir", "doshi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Significant() mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstWords(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Elon Reeve Musk", 2, "Elon Reeve"},
		{"Elon", 2, "Elon"},
		{"  spaced   out words ", 2, "spaced out"},
		{"", 2, ""},
	}
	for _, tt := range tests {
		if got := FirstWords(tt.in, tt.n); got != tt.want {
			t.Errorf("FirstWords(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
