// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: plain values with no behaviour
// beyond a few small helpers. Go favours composition over inheritance.
package model

// User represents a registered account.
//
// The ID is chosen by the client at registration time and is immutable
// afterwards; it is the foreign key everything else (shorts, follows, likes)
// hangs off. Password is an opaque secret compared by exact match; the
// authoritative store conditions every owner-scoped mutation on (id, pwd),
// so a wrong credential simply affects zero rows.
//
// The cache entry for a user is the full row, password included. A cached
// record only counts as a hit when the presented password matches the cached
// one; otherwise the lookup falls through to the database, keeping the cache
// path and the DB path indistinguishable to a caller probing for existence.
type User struct {
	ID          string `json:"userId"`
	Password    string `json:"pwd"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Complete reports whether all required fields are present.
// Creation rejects incomplete users with a bad-request error.
func (u User) Complete() bool {
	return u.ID != "" && u.Password != "" && u.Email != "" && u.DisplayName != ""
}
