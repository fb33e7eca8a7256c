package internal

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const codeFence = "```"

var codeLangPattern = regexp.MustCompile("```([\\p{L}\\p{N}_]+)")

// isSpace matches the Unicode space set plus the ASCII information
// separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, isSpace))
}

// CharCount counts code points.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// HasCode reports whether text contains a code fence.
func HasCode(text string) bool {
	return strings.Contains(text, codeFence)
}

// CodeLanguages returns the tag after every fence that carries one, in order.
func CodeLanguages(text string) []string {
	matches := codeLangPattern.FindAllStringSubmatch(text, -1)
	langs := make([]string, 0, len(matches))
	for _, m := range matches {
		langs = append(langs, m[1])
	}
	return langs
}

// Round rounds half-to-even on the exact binary value, to places decimals.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
