package textrep

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokenPattern matches runs of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize normalizes text (NFKC, lower case) and splits it into word tokens.
func Tokenize(text string) []string {
	normalized := strings.ToLower(norm.NFKC.String(text))
	return tokenPattern.FindAllString(normalized, -1)
}

// terms drops stop words and emits n-grams for every n in [minN, maxN].
func terms(text string, stop map[string]struct{}, minN, maxN int) []string {
	tokens := Tokenize(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := stop[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}

	out := make([]string, 0, len(kept)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		if n == 1 {
			out = append(out, kept...)
			continue
		}
		for i := 0; i+n <= len(kept); i++ {
			out = append(out, strings.Join(kept[i:i+n], " "))
		}
	}
	return out
}
