package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultBio          = "hey there! I am using PostIt"
	DefaultProfilePhoto = "https://postit-media.s3.amazonaws.com/defaults/default_profile.jpg"
)

// User represents a user document stored in MongoDB. The followers and
// following arrays are the authoritative membership lists: A being in
// B.Followers must always imply B is in A.Following, and every mutating
// operation goes through the follow service to keep the two sides in sync.
type User struct {
	ID              primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Fullname        string               `json:"fullname" bson:"fullname"`
	Username        string               `json:"username" bson:"username"`
	Email           string               `json:"email,omitempty" bson:"email,omitempty"`
	Password        string               `json:"-" bson:"password"`
	Bio             string               `json:"bio" bson:"bio"`
	ProfilePhoto    string               `json:"profile_photo" bson:"profile_photo"`
	ProfilePhotoKey string               `json:"-" bson:"profile_photo_key,omitempty"`
	RefreshToken    string               `json:"-" bson:"refresh_token,omitempty"`
	FirebaseUID     string               `json:"-" bson:"firebase_uid,omitempty"`
	Followers       []primitive.ObjectID `json:"followers" bson:"followers"`
	Following       []primitive.ObjectID `json:"following" bson:"following"`
	IsPrivate       bool                 `json:"is_private" bson:"is_private"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserSummary is the projection attached to follower/following listings,
// notification feeds and comment owners.
type UserSummary struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Username     string             `json:"username" bson:"username"`
	ProfilePhoto string             `json:"profile_photo" bson:"profile_photo"`
}

// Summary strips a user down to the fields safe to embed in other payloads.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePhoto: u.ProfilePhoto}
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Fullname string `json:"fullname" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for login; identifier is a
// username or an email
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the multipart form fields for profile edits
type UpdateProfileRequest struct {
	Fullname  string `json:"fullname" form:"fullname" validate:"omitempty,min=2,max=50"`
	Username  string `json:"username" form:"username" validate:"omitempty,min=3,max=30"`
	Bio       string `json:"bio" form:"bio" validate:"omitempty,max=200"`
	IsPrivate *bool  `json:"is_private" form:"is_private"`
}

// ChangePasswordRequest defines the request body for password changes
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for the Firebase provider
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
