package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAthlete Role = "ATHLETE"
	RoleCoach   Role = "COACH"
	RoleAdmin   Role = "SAI_ADMIN"
)

// ParseRole normalises a client supplied role. The second value is false
// for anything outside the known set.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAthlete, RoleCoach, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// User is an athlete, coach or administrator account together with its
// public profile.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       string             `bson:"userId" json:"userId"` // <role>_<hex>, stable public id
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"` // bcrypt, never exposed
	Role         Role               `bson:"role" json:"role"`
	District     string             `bson:"district,omitempty" json:"district,omitempty"`
	ProfilePic   string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"` // URL or inline data URL
	Skills       []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAthlete() bool {
	return u.Role == RoleAthlete
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

// ProfileUpdate carries the profile fields a client may change. Nil means
// "leave as is".
type ProfileUpdate struct {
	Name       *string
	District   *string
	ProfilePic *string
	Bio        *string
	Phone      *string
	Skills     []string
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.District == nil && p.ProfilePic == nil &&
		p.Bio == nil && p.Phone == nil && p.Skills == nil
}
