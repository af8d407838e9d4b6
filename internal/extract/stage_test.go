package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateForPrompt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short text untouched", in: "Fed raises rates", want: "Fed raises rates"},
		{
			name: "long ascii cut at limit",
			in:   strings.Repeat("a", maxPromptText+100),
			want: strings.Repeat("a", maxPromptText),
		},
		{
			name: "multibyte rune at the limit is dropped whole",
			in:   strings.Repeat("a", maxPromptText-1) + "résultats",
			want: strings.Repeat("a", maxPromptText-1) + "r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateForPrompt(tt.in)
			if got != tt.want {
				t.Errorf("truncateForPrompt() len = %d, want len %d", len(got), len(tt.want))
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateForPrompt() produced invalid UTF-8")
			}
		})
	}
}
