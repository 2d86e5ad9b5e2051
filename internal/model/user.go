package model

type User struct {
	ID              int64        `json:"id"`
	Email           string       `json:"email"`
	FirstName       string       `json:"firstName,omitempty"`
	LastName        string       `json:"lastName,omitempty"`
	Role            Role         `json:"role"`
	Provider        AuthProvider `json:"provider,omitempty"`
	ProfileImageURL *string      `json:"profileImageUrl,omitempty"`
	CreatedAt       Timestamp    `json:"createdAt,omitempty"`
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// AuthResponse is returned by every credential exchange endpoint.
type AuthResponse struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
	User  User   `json:"user"`
}
