package types

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// AppKey is the context key for the command environment
	AppKey ContextKey = "app"
)
