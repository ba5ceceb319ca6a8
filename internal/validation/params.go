package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar date format the backend accepts for from/to.
const DateLayout = "2006-01-02"

// MaxQueryLength mirrors the backend's limit on the q parameter.
const MaxQueryLength = 500

var languagePattern = regexp.MustCompile(`^[a-z]{2}$`)

// ValidateDate accepts "" (no bound) or a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}

// ValidateDateRange checks both bounds and that from is not after to.
func ValidateDateRange(from, to string) error {
	if err := ValidateDate(from); err != nil {
		return err
	}
	if err := ValidateDate(to); err != nil {
		return err
	}
	if from != "" && to != "" && from > to {
		return fmt.Errorf("from date %s is after to date %s", from, to)
	}
	return nil
}

// ValidateLanguage accepts "" (all languages) or a 2-letter ISO code.
func ValidateLanguage(code string) error {
	if code == "" || languagePattern.MatchString(code) {
		return nil
	}
	return fmt.Errorf("invalid language %q: expected a 2-letter lowercase code", code)
}

// SanitizeQuery normalizes free-text search input: whitespace runs collapse
// to one space and the result is capped at MaxQueryLength runes.
func SanitizeQuery(input string) string {
	input = strings.Join(strings.Fields(input), " ")

	r := []rune(input)
	if len(r) > MaxQueryLength {
		input = strings.TrimSpace(string(r[:MaxQueryLength]))
	}
	return input
}
