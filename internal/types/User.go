package types

// User identifies a wallet owner.
type User string

func (u User) String() string { return string(u) }
