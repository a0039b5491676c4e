package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"57", float64(57)},
		{"null", nil},
		{`["a","b"]`, []any{"a", "b"}},
		{"Science Advances", "Science Advances"},
		{`"quoted"`, "quoted"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := normalizeKey("store-backend"); got != "store_backend" {
		t.Errorf("normalizeKey() = %q", got)
	}
	if got := normalizeKey("page_rows"); got != "page_rows" {
		t.Errorf("normalizeKey() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five six", 12, "  ")
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 12 {
			t.Errorf("line %q exceeds width", line)
		}
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing indent", line)
		}
	}
	if wrapText("   ", 10, "") != "" {
		t.Error("blank text should wrap to empty")
	}
}
