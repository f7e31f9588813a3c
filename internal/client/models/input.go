package models

// LoginInput is the payload of the login form.
type LoginInput struct {
	Username string `json:"username" validate:"min=2"`
	Password string `json:"password" validate:"min=5"`
}

// RegisterInput is the payload of the registration form. Exactly one of
// TeamID and TeamName must be set: join an existing team or create one.
type RegisterInput struct {
	Email     string `json:"email" validate:"min=1"`
	FirstName string `json:"firstName" validate:"min=1"`
	LastName  string `json:"lastName" validate:"min=1"`
	Password  string `json:"password" validate:"min=5"`
	TeamID    string `json:"teamId,omitempty" validate:"required_without=TeamName,excluded_with=TeamName"`
	TeamName  string `json:"teamName,omitempty" validate:"required_without=TeamID,excluded_with=TeamID"`
}
