package domain

// User is a roster entry
type User struct {
	ChatID   string
	IsActive bool
}
