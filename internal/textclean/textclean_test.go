package textclean

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Hello World  ", "hello world"},
		{"ALREADY", "already"},
		{"", ""},
		{"\tTabs\n", "tabs"},
		// "e" + combining acute composes to a single rune.
		{"Cafe\u0301", "caf\u00e9"},
		{"CAF\u00c9", "caf\u00e9"},
	}

	for _, tt := range tests {
		got := Clean(tt.input)
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
