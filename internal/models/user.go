package models

import "time"

// Roles stored on user records and carried in token claims.
const (
	RoleAdmin   = "admin"
	RoleExpert  = "expert"
	RoleUser    = "user"
	RoleStudent = "student"
)

// User represents an APT-TECH Connect account document. The document id
// doubles as the uid used by the identity provider.
//
// IsStudentApproved is tri-state: nil = pending, true = approved,
// false = rejected.
type User struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	Firstname         string    `bson:"firstname" json:"firstname"`
	Lastname          string    `bson:"lastname" json:"lastname"`
	Email             string    `bson:"email" json:"email"`
	Password          string    `bson:"password" json:"password,omitempty"`
	College           string    `bson:"college" json:"college"`
	YearOfStudy       string    `bson:"year_of_study" json:"year_of_study"`
	Role              string    `bson:"role,omitempty" json:"role,omitempty"`
	IsStudentApproved *bool     `bson:"isStudentApproved,omitempty" json:"isStudentApproved"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StudentSummary is the admin roster projection of a student account.
type StudentSummary struct {
	UID               string  `json:"uid"`
	Email             string  `json:"email"`
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	IsStudentApproved *bool   `json:"isStudentApproved"`
}

// Principal is the authenticated identity resolved for a single request.
type Principal struct {
	UID    string                 `json:"uid"`
	Email  string                 `json:"email"`
	Name   string                 `json:"name"`
	Role   string                 `json:"role,omitempty"`
	Claims map[string]interface{} `json:"-"`
}
