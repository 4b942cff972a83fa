package repair

import "fmt"

// ConfigurationError - не хватает или некорректен параметр подключения к модели.
// Возвращается из New до любых сетевых запросов.
type ConfigurationError struct {
	Field  string
	EnvVar string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("некорректный параметр %s (%s): %v", e.Field, e.EnvVar, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("некорректный параметр %s (%s): %s", e.Field, e.EnvVar, e.Reason)
	default:
		return fmt.Sprintf("Azure OpenAI %s не задан: передайте его явно или через переменную окружения %s", e.Field, e.EnvVar)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// InvocationError - запрос к модели завершился ошибкой или вернул пустой ответ.
type InvocationError struct {
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("не удалось получить новый селектор от Azure OpenAI: %v", e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
