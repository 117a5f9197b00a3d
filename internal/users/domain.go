package users

// Roles accepted on an identity.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the persisted identity record. Password holds the bcrypt hash and
// must never leave the process; use PublicView at response boundaries.
type User struct {
	ID       string `json:"_id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"password,omitempty" bson:"password,omitempty"`
	Role     string `json:"role" bson:"role"`
}

// DocID implements docstore.Document.
func (u User) DocID() string { return u.ID }

// WithDocID implements docstore.Document.
func (u User) WithDocID(id string) User {
	u.ID = id
	return u
}

// Public is the externally visible projection of a User.
type Public struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// PublicView strips the password hash.
func (u User) PublicView() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// PublicViews projects a slice of users.
func PublicViews(list []User) []Public {
	out := make([]Public, 0, len(list))
	for _, u := range list {
		out = append(out, u.PublicView())
	}
	return out
}

// CreateInput is the payload accepted when creating a user.
type CreateInput struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"omitempty,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateInput carries optional field changes. Nil fields are left untouched.
type UpdateInput struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,maxbytes=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
}
