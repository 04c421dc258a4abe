package inline

import "strings"

// Match is one image or link occurrence in a text. Start and End are byte
// offsets of the whole `[text](url)` (or `![alt](url)`) construct.
type Match struct {
	Text  string
	URL   string
	Start int
	End   int
}

// Tokenize splits text into typed fragments. Images are extracted first, then
// links, then `**`, `*` and backtick delimited runs, each step working only on
// the plain fragments left by the steps before it.
func Tokenize(text string) []Fragment {
	frags := []Fragment{{Text: text, Kind: Plain}}
	frags = SplitImages(frags)
	frags = SplitLinks(frags)
	frags = SplitDelimiter(frags, "**", Bold)
	frags = SplitDelimiter(frags, "*", Italic)
	frags = SplitDelimiter(frags, "`", Code)
	return frags
}

// SplitDelimiter splits every plain fragment on delim. Segments alternate
// between outside (plain) and inside (kind), starting outside. Every segment
// is kept, so joining the texts with delim gives back the input.
func SplitDelimiter(frags []Fragment, delim string, kind Kind) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind != Plain || delim == "" {
			out = append(out, f)
			continue
		}
		inside := false
		for _, part := range strings.Split(f.Text, delim) {
			if inside {
				out = append(out, Fragment{Text: part, Kind: kind})
			} else {
				out = append(out, Fragment{Text: part, Kind: Plain})
			}
			inside = !inside
		}
	}
	return out
}

// SplitImages replaces `![alt](url)` constructs in plain fragments with Image
// fragments.
func SplitImages(frags []Fragment) []Fragment {
	return splitMatches(frags, Image, ExtractImages)
}

// SplitLinks replaces `[text](url)` constructs in plain fragments with Link
// fragments. A `[` directly preceded by `!` never starts a link.
func SplitLinks(frags []Fragment) []Fragment {
	return splitMatches(frags, Link, ExtractLinks)
}

func splitMatches(frags []Fragment, kind Kind, extract func(string) []Match) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind != Plain {
			out = append(out, f)
			continue
		}
		matches := extract(f.Text)
		if len(matches) == 0 {
			out = append(out, f)
			continue
		}
		pos := 0
		for _, m := range matches {
			if m.Start > pos {
				out = append(out, Fragment{Text: f.Text[pos:m.Start], Kind: Plain})
			}
			out = append(out, Fragment{Text: m.Text, Kind: kind, URL: m.URL})
			pos = m.End
		}
		if pos < len(f.Text) {
			out = append(out, Fragment{Text: f.Text[pos:], Kind: Plain})
		}
	}
	return out
}

// ExtractImages returns all non-overlapping `![alt](url)` matches, left to
// right.
func ExtractImages(text string) []Match {
	var matches []Match
	for i := 0; i+1 < len(text); {
		if text[i] == '!' && text[i+1] == '[' {
			if m, ok := matchBracketed(text, i+1); ok {
				m.Start = i
				matches = append(matches, m)
				i = m.End
				continue
			}
		}
		i++
	}
	return matches
}

// ExtractLinks returns all non-overlapping `[text](url)` matches that are not
// preceded by `!`, left to right.
func ExtractLinks(text string) []Match {
	var matches []Match
	for i := 0; i < len(text); {
		if text[i] == '[' && (i == 0 || text[i-1] != '!') {
			if m, ok := matchBracketed(text, i); ok {
				matches = append(matches, m)
				i = m.End
				continue
			}
		}
		i++
	}
	return matches
}

// matchBracketed matches `[text](url)` with text[open] == '['. The label may
// not contain brackets and the URL may not contain parentheses.
func matchBracketed(text string, open int) (Match, bool) {
	end := -1
	for j := open + 1; j < len(text); j++ {
		if text[j] == '[' {
			return Match{}, false
		}
		if text[j] == ']' {
			end = j
			break
		}
	}
	if end < 0 || end+1 >= len(text) || text[end+1] != '(' {
		return Match{}, false
	}
	for k := end + 2; k < len(text); k++ {
		switch text[k] {
		case '(':
			return Match{}, false
		case ')':
			return Match{
				Text:  text[open+1 : end],
				URL:   text[end+2 : k],
				Start: open,
				End:   k + 1,
			}, true
		}
	}
	return Match{}, false
}
