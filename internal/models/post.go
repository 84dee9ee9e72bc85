package models

import "time"

// Post is a blog entry. Author is populated by reads that join the user
// table; UserID is the source of truth for ownership.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	DatePosted time.Time `json:"date_posted"`
	UserID     int64     `json:"user_id"`
	Author     User      `json:"author"`
}

// OwnedBy reports whether u is the author of p.
func (p *Post) OwnedBy(u *User) bool {
	return u != nil && p.UserID == u.ID
}
