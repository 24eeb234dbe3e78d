package entity

import (
	"time"
)

const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

// Profile is identity metadata keyed by the identity provider uid.
type Profile struct {
	ID       string `json:"id" firestore:"id"`
	Role     string `json:"role" firestore:"role"`
	Email    string `json:"email,omitempty" firestore:"email,omitempty"`
	Phone    string `json:"phone,omitempty" firestore:"phone,omitempty"`
	FullName string `json:"full_name,omitempty" firestore:"fullName,omitempty"`
	DOB      string `json:"dob,omitempty" firestore:"dob,omitempty"`
	City     string `json:"city,omitempty" firestore:"city,omitempty"`
	Area     string `json:"area,omitempty" firestore:"area,omitempty"`
	Pincode  string `json:"pincode,omitempty" firestore:"pincode,omitempty"`

	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Name is what certificates and messages address the user by.
func (p *Profile) Name() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Email != "" {
		return p.Email
	}
	return p.Phone
}
