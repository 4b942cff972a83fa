// Package sanitizer маскирует чувствительные данные в разметке страницы
// перед отправкой ее во внешнюю LLM.
package sanitizer

type Rule interface {
	Sanitize(text string) string
}

type DataSanitizer struct {
	rules []Rule
}

func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []Rule{
			&PasswordSanitizer{},
			&TokenSanitizer{},
			&CookieSanitizer{},
			&CardSanitizer{},
			&APIKeySanitizer{},
			&EmailSanitizer{},
		},
	}
}

// NewWithRules собирает санитайзер из произвольного набора правил.
func NewWithRules(rules ...Rule) *DataSanitizer {
	return &DataSanitizer{rules: rules}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}

	return result
}
