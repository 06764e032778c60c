package claim

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtract_TitleFirst(t *testing.T) {
	c := Extract("Water boils at 50C at sea level", "Saw this on TV. Pretty sure it's real!")

	if c.Text != "Water boils at 50C at sea level" {
		t.Errorf("text = %q", c.Text)
	}
	want := []string{"Water boils at 50C at sea level", "Saw this on TV.", "Pretty sure it's real!"}
	if len(c.Sentences) != len(want) {
		t.Fatalf("sentences = %v, want %v", c.Sentences, want)
	}
	for i := range want {
		if c.Sentences[i] != want[i] {
			t.Errorf("sentence[%d] = %q, want %q", i, c.Sentences[i], want[i])
		}
	}
}

func TestExtract_BodyOnly(t *testing.T) {
	c := Extract("", "The moon is made of cheese. NASA confirmed it today.")
	if c.Text != "The moon is made of cheese." {
		t.Errorf("text = %q", c.Text)
	}
}

func TestExtract_CapsSentences(t *testing.T) {
	c := Extract("One.", "Two. Three. Four. Five.")
	if len(c.Sentences) != maxSentences {
		t.Errorf("sentences = %v, want %d", c.Sentences, maxSentences)
	}
}

func TestExtract_DeduplicatesTitleInBody(t *testing.T) {
	c := Extract("Same line", "Same line\nother line")
	if len(c.Sentences) != 2 || c.Sentences[1] != "other line" {
		t.Errorf("sentences = %v", c.Sentences)
	}
}

func TestExtract_Links(t *testing.T) {
	c := Extract("Big news", "Source: https://example.com/a, also https://example.com/b. And https://example.com/a again.")

	if len(c.Links) != 2 {
		t.Fatalf("links = %v, want 2 unique", c.Links)
	}
	if c.Links[0] != "https://example.com/a" || c.Links[1] != "https://example.com/b" {
		t.Errorf("links = %v", c.Links)
	}
	for _, s := range c.Sentences {
		if strings.Contains(s, "https://") {
			t.Errorf("sentence kept url: %q", s)
		}
	}
}

func TestExtract_LongTextCapped(t *testing.T) {
	long := strings.Repeat("word ", 100)
	c := Extract(long, "")
	if n := utf8.RuneCountInString(c.Text); n > maxTextRunes+3 {
		t.Errorf("text length = %d runes", n)
	}
	if !strings.HasSuffix(c.Text, "...") {
		t.Errorf("text = %q, want ellipsis", c.Text)
	}
}

func TestExtract_MultibyteCap(t *testing.T) {
	long := strings.Repeat("ж", 400)
	c := Extract(long, "")
	if !utf8.ValidString(c.Text) {
		t.Fatal("cap split a rune")
	}
	if n := utf8.RuneCountInString(c.Text); n != maxTextRunes+3 {
		t.Errorf("text length = %d runes", n)
	}
}

func TestExtract_Empty(t *testing.T) {
	c := Extract("  ", "\n\n")
	if !c.Empty() {
		t.Errorf("claim = %+v, want empty", c)
	}
	if c.Links != nil || c.Sentences != nil {
		t.Errorf("claim = %+v, want nil slices", c)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"One. Two. Three.", 3},
		{"No boundary here", 1},
		{"Version 1.2.3 released. Upgrade now.", 2},
		{"Line one\nLine two", 2},
		{"Really? Yes! Ok.", 3},
		{"", 0},
	}
	for _, tt := range tests {
		got := splitSentences(tt.in)
		if len(got) != tt.want {
			t.Errorf("splitSentences(%q) = %v, want %d", tt.in, got, tt.want)
		}
	}
}
