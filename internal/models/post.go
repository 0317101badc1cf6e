package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents an image post stored in MongoDB. Likes is a membership
// list of user ids; Comments holds the ids of the comment documents so a
// comment delete must also pull its id from here.
type Post struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   primitive.ObjectID   `json:"owner_id" bson:"owner_id"`
	Images    []string             `json:"images" bson:"images"`
	ImageKeys []string             `json:"-" bson:"image_keys,omitempty"`
	Caption   string               `json:"caption" bson:"caption"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []primitive.ObjectID `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// UpdateCaptionRequest defines the request body for caption edits
type UpdateCaptionRequest struct {
	Caption string `json:"caption" validate:"required,min=1,max=500"`
}

// FeedPost is a post decorated with its owner and viewer-relative fields
// for the global feed and profile grids.
type FeedPost struct {
	ID            primitive.ObjectID `json:"id"`
	Images        []string           `json:"images"`
	Caption       string             `json:"caption"`
	Owner         UserSummary        `json:"owner"`
	LikesCount    int                `json:"likes_count"`
	CommentsCount int                `json:"comments_count"`
	LikedByUser   bool               `json:"liked_by_user"`
	CreatedAt     time.Time          `json:"created_at"`
}

// PostDetail is the single-post view: the feed fields plus populated comments.
type PostDetail struct {
	FeedPost
	Comments []CommentView `json:"comments"`
}
