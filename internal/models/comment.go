package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment document stored in MongoDB
type Comment struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    primitive.ObjectID   `json:"post_id" bson:"post_id"`
	OwnerID   primitive.ObjectID   `json:"owner_id" bson:"owner_id"`
	Text      string               `json:"text" bson:"text"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for adding a comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// CommentView is a comment decorated with its owner and viewer-relative
// like fields for the single-post view.
type CommentView struct {
	ID          primitive.ObjectID `json:"id"`
	Text        string             `json:"text"`
	Owner       UserSummary        `json:"owner"`
	LikesCount  int                `json:"likes_count"`
	LikedByUser bool               `json:"liked_by_user"`
	CreatedAt   time.Time          `json:"created_at"`
}
