package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/kinjaldesarla/PostIt/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, commentID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment document
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment: %w", ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByIDs retrieves the comments for a post's comment-id list,
// oldest first
func (r *MongoCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment deletes a comment document. The caller is responsible for
// pulling the id from the parent post's comment list.
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment: %w", ErrNotFound)
	}
	return nil
}

// AddLike adds userID to the comment's like list
func (r *MongoCommentRepository) AddLike(ctx context.Context, commentID, userID primitive.ObjectID) error {
	return r.updateLikes(ctx, commentID, "$addToSet", userID)
}

// RemoveLike pulls userID from the comment's like list
func (r *MongoCommentRepository) RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) error {
	return r.updateLikes(ctx, commentID, "$pull", userID)
}

func (r *MongoCommentRepository) updateLikes(ctx context.Context, commentID primitive.ObjectID, op string, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": commentID}, bson.M{op: bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment: %w", ErrNotFound)
	}
	return nil
}
