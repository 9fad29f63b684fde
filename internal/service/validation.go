package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/maxviazov/memo-service/internal/model"
)

// normalizeText trims surrounding whitespace and reports any problem with the result.
func normalizeText(text string) (string, []FieldError) {
	s := strings.TrimSpace(text)
	if s == "" {
		return s, []FieldError{{Field: "text", Message: "must not be empty"}}
	}
	if utf8.RuneCountInString(s) > model.MaxMemoTextLength {
		return s, []FieldError{{Field: "text", Message: fmt.Sprintf("length must be at most %d", model.MaxMemoTextLength)}}
	}
	return s, nil
}

func checkID(field string, id int64) []FieldError {
	if id <= 0 {
		return []FieldError{{Field: field, Message: "must be > 0"}}
	}
	return nil
}

func checkSeedCount(n int) []FieldError {
	if n < MinSeedCount || n > MaxSeedCount {
		return []FieldError{{Field: "count", Message: fmt.Sprintf("must be between %d and %d", MinSeedCount, MaxSeedCount)}}
	}
	return nil
}

func dummyText(i int) string { return fmt.Sprintf("Sample...%d", i) }
