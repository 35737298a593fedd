package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultSampleSize is how many characters of decoded text the sniffer sees.
const DefaultSampleSize = 4096

// ErrSniffFailed is returned when no candidate delimiter is used consistently
// across the sample.
var ErrSniffFailed = errors.New("could not determine delimiter")

// SniffCandidates are the delimiters considered by auto-detection, in order
// of preference when more than one fits.
var SniffCandidates = []rune{',', '\t', ';', '|'}

// sniffConsistency is the share of lines (in percent) that must agree on a
// delimiter's per-line count. It relaxes from strict to lenient.
const (
	sniffConsistencyStrict  = 100
	sniffConsistencyLenient = 90
)

// DelimiterChoice is the user's delimiter preference: auto-detect or an
// explicit separator.
type DelimiterChoice struct {
	explicit string
}

// AutoDelimiter asks the resolver to sniff the delimiter.
var AutoDelimiter = DelimiterChoice{}

// ExplicitDelimiter returns a choice that resolves to d verbatim.
func ExplicitDelimiter(d string) DelimiterChoice {
	return DelimiterChoice{explicit: d}
}

var delimiterAliases = map[string]string{
	"comma":     ",",
	"tab":       "\t",
	`\t`:        "\t",
	"semicolon": ";",
	"pipe":      "|",
}

// ParseDelimiterChoice maps a delimiter control value to a choice. "auto" and
// the empty string select auto-detection; comma, tab, semicolon and pipe
// names are accepted; anything else is used verbatim.
func ParseDelimiterChoice(s string) DelimiterChoice {
	if s == "" || strings.EqualFold(s, "auto") {
		return AutoDelimiter
	}
	if d, ok := delimiterAliases[strings.ToLower(s)]; ok {
		return ExplicitDelimiter(d)
	}
	return ExplicitDelimiter(s)
}

// IsAuto reports whether the delimiter should be detected.
func (c DelimiterChoice) IsAuto() bool {
	return c.explicit == ""
}

// String returns "auto" or the quoted explicit delimiter.
func (c DelimiterChoice) String() string {
	if c.IsAuto() {
		return "auto"
	}
	return strconv.Quote(c.explicit)
}

// ResolveDelimiter decides the field separator for a run. An explicit choice
// is returned unchanged, with no check that it occurs in the data. Auto
// sniffs the sample; when sniffing fails it falls back to tab if the sample
// contains one and comma otherwise.
func ResolveDelimiter(sample string, choice DelimiterChoice) string {
	if !choice.IsAuto() {
		return choice.explicit
	}
	if d, err := Sniff(sample, SniffCandidates); err == nil {
		return string(d)
	}
	if strings.ContainsRune(sample, '\t') {
		return "\t"
	}
	return ","
}

// Sniff guesses the delimiter of sample from candidates. A candidate
// qualifies when the most common number of occurrences per line is non-zero
// and shared by enough lines. Occurrences inside double quotes are ignored.
func Sniff(sample string, candidates []rune) (rune, error) {
	lines := sniffLines(sample)
	if len(lines) == 0 {
		return 0, ErrSniffFailed
	}

	type mode struct {
		freq  int
		lines int
	}
	modes := make(map[rune]mode, len(candidates))

	for _, c := range candidates {
		hist := make(map[int]int)
		for _, line := range lines {
			hist[countOutsideQuotes(line, c)]++
		}

		var m mode
		for freq, n := range hist {
			if n > m.lines || (n == m.lines && freq > m.freq) {
				m = mode{freq: freq, lines: n}
			}
		}
		if m.freq > 0 {
			modes[c] = m
		}
	}

	total := len(lines)
	for consistency := sniffConsistencyStrict; consistency >= sniffConsistencyLenient; consistency-- {
		for _, c := range candidates {
			m, ok := modes[c]
			if !ok {
				continue
			}
			if m.lines*100 >= consistency*total {
				return c, nil
			}
		}
	}

	return 0, ErrSniffFailed
}

// SampleText returns at most n characters from the start of text. A
// truncated sample is cut back to its last complete line so a partial
// record does not skew sniffing.
func SampleText(text string, n int) string {
	if n <= 0 {
		n = DefaultSampleSize
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	end := 0
	for i := 0; i < n; i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	sample := text[:end]

	if idx := strings.LastIndexAny(sample, "\r\n"); idx > 0 {
		return sample[:idx+1]
	}
	return sample
}

// sniffLines splits sample into its non-empty lines. LF, CRLF and lone CR
// all end a line.
func sniffLines(sample string) []string {
	raw := strings.Split(normalizeLineBreaks(sample), "\n")
	lines := raw[:0]
	for _, line := range raw {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func countOutsideQuotes(line string, c rune) int {
	n := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == c && !inQuotes:
			n++
		}
	}
	return n
}
