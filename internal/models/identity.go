package models

// Identity is who the current caller is. Its JSON form is the auth
// response body: {token, name, email, is_admin}.
type Identity struct {
	Token   string `json:"token,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Anonymous returns the identity used when nobody is logged in.
func Anonymous() Identity {
	return Identity{}
}

// IsAnonymous reports whether the identity carries no credential.
func (i Identity) IsAnonymous() bool {
	return i.Token == "" && i.UserID == ""
}

// IdentityFor builds the identity of an authenticated user.
func IdentityFor(user *User, token string) Identity {
	return Identity{
		Token:   token,
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}
