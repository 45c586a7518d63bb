package document

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/termbridge/termbridge/internal/terminology"
)

var (
	percentRe = regexp.MustCompile(`^-?[\d.,]+\s*%$`)
	dateRe    = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}([ T]\d{1,2}:\d{2}(:\d{2})?)?$|^\d{1,2}[:]\d{2}(:\d{2})?$`)
)

// NonLinguistic reports whether text carries nothing worth translating:
// numbers, dates/times, percentages, and very short non-linguistic tokens.
// Single ideographic characters and unit words are not skipped.
func NonLinguistic(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}

	if isNumeric(t) || percentRe.MatchString(t) || dateRe.MatchString(t) {
		return true
	}

	switch strings.ToUpper(t) {
	case "N/A", "NA", "-", "—", "/":
		return true
	}

	// Single measure words ("台" in "10台") carry translatable meaning,
	// same dictionary as the terminology substitution fast path.
	runes := []rune(t)
	if len(runes) == 1 {
		r := runes[0]
		if unicode.Is(unicode.Han, r) || terminology.IsUnitWord(string(r)) {
			return false
		}
		return !unicode.IsLetter(r)
	}

	// Tokens with no letters at all (pure symbols/punctuation)
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isNumeric(t string) bool {
	cleaned := strings.ReplaceAll(t, ",", "")
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}
