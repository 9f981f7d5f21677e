package content

import "testing"

func TestDetectHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain words", "hello there", false},
		{"angle brackets in prose", "3 < 5 and 7 > 2", false},
		{"single bare paragraph", "<p>hello</p>", false},
		{"paragraph with nested tag", "<p>hello <em>world</em></p>", true},
		{"non-paragraph root", "<h1>Title</h1>", true},
		{"inline tag in text", "some <b>bold</b> text", true},
		{"multiple paragraphs", "<p>one</p><p>two</p>", true},
		{"empty string", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectHTML(tt.input); got != tt.want {
				t.Errorf("DetectHTML(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
