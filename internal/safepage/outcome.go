package safepage

type Status int

const (
	StatusSucceeded Status = iota
	StatusHealed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusHealed:
		return "healed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome - итог одного вызова действия. Healed заполнен, только если
// LLM успела предложить селектор.
type Outcome struct {
	Status   Status
	Original string
	Healed   string
}
