package sanitizer

import "regexp"

var (
	passwordInputPattern = regexp.MustCompile(`(?i)<input\b[^>]*\btype\s*=\s*["']?password["']?[^>]*>`)
	valueAttrPattern     = regexp.MustCompile(`(?i)(\bvalue\s*=\s*)("[^"]*"|'[^']*'|[^\s>]+)`)
	passwordPairPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(password|пароль|passwd|pwd)(\s*[:=]\s*)["']?[^"'\s<>]{3,}["']?`),
	}
)

// PasswordSanitizer убирает значения полей type=password и пары вида password=...
type PasswordSanitizer struct{}

func (s *PasswordSanitizer) Sanitize(text string) string {
	text = passwordInputPattern.ReplaceAllStringFunc(text, func(tag string) string {
		return valueAttrPattern.ReplaceAllString(tag, `${1}"[FILTERED]"`)
	})

	for _, pattern := range passwordPairPatterns {
		text = pattern.ReplaceAllString(text, `${1}${2}[FILTERED]`)
	}

	return text
}
