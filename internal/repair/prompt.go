package repair

import "fmt"

const systemPrompt = `Act as a Senior QA Engineer and Playwright expert.
Your job is to analyze failed selectors and suggest corrected ones based on the DOM structure.

Rules:
- Return ONLY the corrected selector string, nothing else
- Prefer CSS selectors or text-based selectors
- Ensure the selector is specific and unlikely to match multiple elements
- Consider common issues: dynamic IDs, changed class names, restructured DOM
- Use Playwright-specific selectors when appropriate (text=, role=, etc.)`

func userPrompt(fc FailureContext) string {
	return fmt.Sprintf(`The following selector FAILED:
Selector: %s

Error Message:
%s

DOM Snapshot (partial):
%s

Analyze the DOM and provide a corrected selector that would likely work.
Return ONLY the selector string.`, fc.Locator, fc.Error, fc.Markup)
}
