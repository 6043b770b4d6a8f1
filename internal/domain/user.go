package domain

// User is the authenticated caller as supplied by the identity layer. The
// order subsystem trusts it and performs no authentication of its own.
type User struct {
	ID       string
	Email    string
	IsActive bool
}
