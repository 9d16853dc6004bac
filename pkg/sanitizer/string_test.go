package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing", "  hello  ", "hello"},
		{"collapses inner whitespace", "a  b\t c", "a b c"},
		{"newlines become single space", "line1\n\nline2", "line1 line2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  User@Example.COM ", "user@example.com"},
		{"a@x.com", "a@x.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.expected {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPipelineApply(t *testing.T) {
	p := Pipeline{NormalizeEmail, TrimAndNormalize}
	if got := p.Apply(" A@B.Com "); got != "a@b.com" {
		t.Errorf("Pipeline.Apply = %q, want %q", got, "a@b.com")
	}
}
