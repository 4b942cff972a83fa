package sanitizer

import "regexp"

var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:api|secret|access)[_-]?(?:key|secret|token)["']?\s*[:=]\s*["']?)[a-zA-Z0-9_-]{20,}`),
}

type APIKeySanitizer struct{}

func (s *APIKeySanitizer) Sanitize(text string) string {
	for _, pattern := range apiKeyPatterns {
		text = pattern.ReplaceAllString(text, `${1}[FILTERED]`)
	}
	return text
}
