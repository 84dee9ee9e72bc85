package models

// DefaultImageFile is the avatar assigned at registration.
const DefaultImageFile = "default.png"

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ImageFile string `json:"image_file"`
	Password  string `json:"-"` // bcrypt hash, never plaintext

	// SessionVersion is embedded in every session; bumping it on logout
	// invalidates all sessions issued before.
	SessionVersion int64 `json:"-"`
}
