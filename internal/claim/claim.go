// Package claim pulls the checkable statement out of fetched post text.
package claim

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var urlRe = regexp.MustCompile(`https?://[^\s<>()"']+`)

const (
	maxSentences = 3
	maxTextRunes = 280
)

// Claim is the statement a check is about.
type Claim struct {
	Text      string   `json:"text"`
	Sentences []string `json:"sentences,omitempty"`
	Links     []string `json:"links,omitempty"`
}

// Empty reports whether no statement could be extracted.
func (c Claim) Empty() bool {
	return c.Text == ""
}

// Extract builds a claim from a post title and body. The title is usually
// the claim itself on Reddit; X posts only have a body.
func Extract(title, body string) Claim {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	var sentences []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] || len(sentences) >= maxSentences {
			return
		}
		seen[s] = true
		sentences = append(sentences, s)
	}

	for _, s := range splitSentences(stripURLs(title)) {
		add(s)
	}
	for _, s := range splitSentences(stripURLs(body)) {
		add(s)
	}

	c := Claim{
		Sentences: sentences,
		Links:     uniqueLinks(urlRe.FindAllString(body, -1)),
	}
	if len(sentences) > 0 {
		c.Text = capRunes(sentences[0], maxTextRunes)
	}
	return c
}

func stripURLs(s string) string {
	return strings.TrimSpace(urlRe.ReplaceAllString(s, ""))
}

func uniqueLinks(links []string) []string {
	if len(links) == 0 {
		return nil
	}
	out := make([]string, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		l = strings.TrimRight(l, ".,;:!?")
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// capRunes truncates at the last space before max runes to avoid cutting words.
func capRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		return cut[:idx] + "..."
	}
	return cut + "..."
}

// splitSentences splits text into sentences on ". ", "! ", "? " and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.Join(strings.Fields(current.String()), " "); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\n' {
			flush()
			continue
		}
		current.WriteByte(ch)
		if isTerminator(ch) && (i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n') {
			flush()
		}
	}
	flush()

	return sentences
}

func isTerminator(ch byte) bool {
	return ch == '.' || ch == '!' || ch == '?'
}
