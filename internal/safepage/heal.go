package safepage

import (
	"context"
	"fmt"

	"selfHealing/internal/repair"

	"go.uber.org/zap"
)

// ActionFunc выполняет одно действие над страницей с заданным селектором.
type ActionFunc func(ctx context.Context, selector string) error

// Perform выполняет действие с самовосстановлением. Click и Fill построены
// на нем же, поэтому любое новое действие лечится одинаково.
//
// Первая попытка идет с исходным селектором. Ошибка поиска элемента запускает
// один цикл: снимок разметки, запрос к LLM, один повтор с новым селектором.
// Остальные ошибки возвращаются сразу как *ActionError.
func (p *Page) Perform(ctx context.Context, action, selector string, fn ActionFunc) (Outcome, error) {
	err := fn(ctx, selector)
	if err == nil {
		return Outcome{Status: StatusSucceeded, Original: selector}, nil
	}

	if !IsHealable(err) {
		return Outcome{Status: StatusFailed, Original: selector}, &ActionError{
			Action:   action,
			Selector: selector,
			Err:      err,
		}
	}

	return p.heal(ctx, action, selector, fn, err)
}

func (p *Page) heal(ctx context.Context, action, selector string, fn ActionFunc, cause error) (Outcome, error) {
	p.log.Warn("[HEALING] исходный селектор не сработал",
		zap.String("action", action),
		zap.String("selector", selector),
		zap.Error(cause),
	)

	healed, err := p.repairer.ProposeLocator(ctx, repair.FailureContext{
		Locator: selector,
		Markup:  p.snapshot(ctx),
		Error:   cause.Error(),
	})
	if err != nil {
		return Outcome{Status: StatusFailed, Original: selector}, &HealingError{
			Stage:    StageRepair,
			Action:   action,
			Original: selector,
			Cause:    cause,
			Err:      err,
		}
	}

	p.log.Info("[HEALING] AI предложил новый селектор",
		zap.String("action", action),
		zap.String("selector", healed),
	)

	if err := fn(ctx, healed); err != nil {
		return Outcome{Status: StatusFailed, Original: selector, Healed: healed}, &HealingError{
			Stage:    StageRetry,
			Action:   action,
			Original: selector,
			Healed:   healed,
			Cause:    cause,
			Err:      err,
		}
	}

	p.log.Info(fmt.Sprintf("HEALED: replaced '%s' with '%s'", selector, healed),
		zap.String("action", action),
		zap.String("original", selector),
		zap.String("healed", healed),
		zap.String("record", selector+" → "+healed),
	)
	if p.cfg.OnHeal != nil {
		p.cfg.OnHeal(HealEvent{Action: action, Original: selector, Healed: healed})
	}

	return Outcome{Status: StatusHealed, Original: selector, Healed: healed}, nil
}

// snapshot возвращает не больше DOMLimit символов разметки. Ошибка получения
// разметки не прерывает восстановление, вместо разметки уходит заглушка.
func (p *Page) snapshot(ctx context.Context) string {
	html, err := p.page.Content(ctx)
	if err != nil {
		p.log.Warn("не удалось получить DOM для восстановления", zap.Error(err))
		return truncate(fmt.Sprintf("<error capturing DOM: %v>", err), p.cfg.DOMLimit)
	}
	return truncate(html, p.cfg.DOMLimit)
}

// truncate обрезает строку до limit символов (рун), не разрезая UTF-8.
func truncate(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
