package lead

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes HTML tags and comments and keeps text content as
// written, so entities such as &amp; are not decoded. Plain text passes
// through unchanged. Malformed markup yields an empty string.
func StripTags(input string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var buf strings.Builder
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return ""
		}
		if tt == html.TextToken {
			buf.Write(tokenizer.Raw())
		}
	}
	return buf.String()
}

// Sanitize strips markup, keeps only ASCII letters, digits, '_', '@', '.',
// '-' and whitespace, then trims whitespace.
func Sanitize(input string) string {
	kept := strings.Map(func(r rune) rune {
		if allowedRune(r) {
			return r
		}
		return -1
	}, StripTags(input))
	return strings.TrimFunc(kept, isSpace)
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '@', r == '.', r == '-':
		return true
	}
	return isSpace(r)
}

// isSpace matches the ECMAScript \s class, which includes NBSP, \v, BOM and
// the Unicode space separators.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// SanitizeSubmission applies Sanitize to every field.
func SanitizeSubmission(s Submission) Submission {
	return Submission{
		FirstName:       Sanitize(s.FirstName),
		LastName:        Sanitize(s.LastName),
		Email:           Sanitize(s.Email),
		Phone:           Sanitize(s.Phone),
		Address:         Sanitize(s.Address),
		PropertyType:    Sanitize(s.PropertyType),
		AppraisalReason: Sanitize(s.AppraisalReason),
		Message:         Sanitize(s.Message),
	}
}
