// Package textx contains tests for the text utilities.
package textx

import "testing"

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"a b  c\nd\te", 5},
	}
	for _, c := range cases {
		if got := WordCount(c.in); got != c.want {
			t.Fatalf("WordCount(%q)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Fatalf("unexpected: %q", got)
	}
	// "é" is two bytes; the cut must back up to the rune start
	if got := Truncate("aé", 2); got != "a..." {
		t.Fatalf("unexpected: %q", got)
	}
}
