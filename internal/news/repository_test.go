package news

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCapString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "under limit", in: "short headline", max: 500, want: "short headline"},
		{name: "exactly at limit", in: strings.Repeat("a", 500), max: 500, want: strings.Repeat("a", 500)},
		{name: "ascii over limit", in: strings.Repeat("a", 501), max: 500, want: strings.Repeat("a", 500)},
		{
			name: "multibyte rune straddles the cap",
			in:   strings.Repeat("a", 499) + "é",
			max:  500,
			want: strings.Repeat("a", 499),
		},
		{
			name: "emoji straddles the cap",
			in:   strings.Repeat("a", 498) + "📈",
			max:  500,
			want: strings.Repeat("a", 498),
		},
		{name: "empty", in: "", max: 500, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capString(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("capString() = %q (len %d), want %q", got, len(got), tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("capString() produced invalid UTF-8: %q", got)
			}
			if len(got) > tt.max {
				t.Errorf("capString() length = %d, exceeds max %d", len(got), tt.max)
			}
		})
	}
}
