package driven

// TokenCounter measures text in model tokens for context budgeting.
type TokenCounter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
}
