package auth

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Jane Doe", want: "Jane Doe"},
		{name: "trims", input: "  Jane Doe  ", want: "Jane Doe"},
		{name: "collapses inner whitespace", input: "Jane \t  Doe", want: "Jane Doe"},
		{name: "control characters", input: "Jane\x00Doe\x07", want: "Jane Doe"},
		{name: "unicode kept", input: "José Müller", want: "José Müller"},
		{name: "apostrophe kept verbatim", input: "O'Brien & Sons", want: "O'Brien & Sons"},
		{name: "only whitespace", input: " \n\t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
