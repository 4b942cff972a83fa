package sanitizer

import "regexp"

var cookiePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:set-)?cookie\s*[:=]\s*["']?)[^"'\n<>]{10,}`),
	regexp.MustCompile(`(?i)(session[_-]?(?:id|token)["']?\s*[:=]\s*["']?)[a-zA-Z0-9_-]{10,}`),
}

type CookieSanitizer struct{}

func (s *CookieSanitizer) Sanitize(text string) string {
	for _, pattern := range cookiePatterns {
		text = pattern.ReplaceAllString(text, `${1}[FILTERED]`)
	}
	return text
}
