package safepage

import (
	"errors"
	"fmt"

	"selfHealing/internal/browser"
)

// IsHealable сообщает, запускает ли ошибка самовосстановление.
// Лечится только ненайденный за таймаут элемент.
func IsHealable(err error) bool {
	return errors.Is(err, browser.ErrElementNotFound)
}

// ActionError - действие упало по причине, не связанной с поиском элемента.
// Самовосстановление не запускалось.
type ActionError struct {
	Action   string
	Selector string
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s по селектору '%s' не выполнен (non-healable): %v", e.Action, e.Selector, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

type Stage string

const (
	StageRepair Stage = "repair" // LLM не вернула селектор
	StageRetry  Stage = "retry"  // повтор с новым селектором тоже упал
)

// HealingError - самовосстановление не удалось. Cause - исходная ошибка
// действия, Err - ошибка LLM или повторного действия.
type HealingError struct {
	Stage    Stage
	Action   string
	Original string
	Healed   string
	Cause    error
	Err      error
}

func (e *HealingError) Error() string {
	if e.Stage == StageRepair {
		return fmt.Sprintf("самовосстановление не удалось: %s по селектору '%s' не выполнен (%v), новый селектор не получен: %v",
			e.Action, e.Original, e.Cause, e.Err)
	}
	return fmt.Sprintf("самовосстановление не удалось: %s, исходный селектор '%s', предложенный селектор '%s', ошибка: %v",
		e.Action, e.Original, e.Healed, e.Err)
}

func (e *HealingError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}
