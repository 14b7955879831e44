package model

import "time"

// Profile is the public face of an account. ID equals the owning user's ID.
// Every optional column is a pointer so JSON keeps the null.
type Profile struct {
	ID        string    `json:"id"`
	Username  *string   `json:"username"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	Website   *string   `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileFields lists the columns an owner may write, in column order.
var ProfileFields = []string{"username", "full_name", "avatar_url", "bio", "website"}
