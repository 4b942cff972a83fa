package sanitizer

import "regexp"

var (
	tokenInputPattern = regexp.MustCompile(`(?i)<input\b[^>]*\bname\s*=\s*["']?[^"'\s>]*(?:token|csrf|xsrf)[^"'\s>]*["']?[^>]*>`)
	tokenPatterns     = []*regexp.Regexp{
		regexp.MustCompile(`(?i)((?:csrf|xsrf)?[_-]?token["']?\s*[:=]\s*["']?)[a-zA-Z0-9_\-+/=]{20,}`),
		regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-.]{20,}`),
		regexp.MustCompile(`()\bsk-[a-zA-Z0-9]{32,}`),
		regexp.MustCompile(`()\bpk_[a-zA-Z0-9]{32,}`),
	}
)

// TokenSanitizer маскирует скрытые поля с токенами, bearer/csrf токены
// и ключи вида sk-..., pk_...
type TokenSanitizer struct{}

func (s *TokenSanitizer) Sanitize(text string) string {
	text = tokenInputPattern.ReplaceAllStringFunc(text, func(tag string) string {
		return valueAttrPattern.ReplaceAllString(tag, `${1}"[FILTERED]"`)
	})

	for _, pattern := range tokenPatterns {
		text = pattern.ReplaceAllString(text, `${1}[FILTERED]`)
	}
	return text
}
