// Package profile pulls the structured facts a screening filter needs out of résumé text.
package profile

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Profile is what could be read from one résumé.
type Profile struct {
	// Skills are the requested skills found in the text, in request order.
	Skills          []string
	ExperienceYears int
	Email           string
}

// HasEmail reports whether an email address was found.
func (p Profile) HasEmail() bool { return p.Email != "" }

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// experiencePatterns are tried in order on the lowercased text; the first hit wins.
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s*years?\s+(?:of\s+)?(?:professional\s+|relevant\s+|work\s+)?experience`),
	regexp.MustCompile(`experience\s*(?:of|:)?\s*(\d+)\+?\s*years?`),
	regexp.MustCompile(`(\d+)\s*ans?\s+d['’e]\s*expérience`),
	regexp.MustCompile(`(\d+)\s+années?\s+d['’e]\s*expérience`),
	regexp.MustCompile(`expérience[:\s]+(\d+)\s*ans?`),
}

// Extract reads the profile of text. Skills are matched as whole words or phrases,
// case-insensitively, so "Java" does not match "JavaScript".
func Extract(text string, skills []string) Profile {
	return Profile{
		Skills:          MatchSkills(text, skills),
		ExperienceYears: ExperienceYears(text),
		Email:           emailPattern.FindString(text),
	}
}

// MatchSkills returns the skills present in text, without duplicates.
func MatchSkills(text string, skills []string) []string {
	haystack := " " + strings.Join(keywords(text), " ") + " "
	seen := make(map[string]struct{}, len(skills))
	var found []string
	for _, skill := range skills {
		words := keywords(skill)
		if len(words) == 0 {
			continue
		}
		needle := strings.Join(words, " ")
		if _, ok := seen[needle]; ok {
			continue
		}
		if strings.Contains(haystack, " "+needle+" ") {
			seen[needle] = struct{}{}
			found = append(found, strings.TrimSpace(skill))
		}
	}
	return found
}

// ExperienceYears returns the stated years of experience, or 0.
func ExperienceYears(text string) int {
	lower := strings.ToLower(text)
	for _, p := range experiencePatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

// keywords lowercases text into words, keeping '+', '#' and inner dots so that
// "C++", "C#" and "Node.js" survive.
func keywords(text string) []string {
	var (
		out  []string
		word strings.Builder
	)
	flush := func() {
		w := strings.Trim(word.String(), ".")
		word.Reset()
		if w != "" {
			out = append(out, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}
