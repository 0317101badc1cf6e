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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post: %w", ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByOwner retrieves a user's posts, newest first
func (r *MongoPostRepository) GetPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

// GetAllPosts retrieves every post, newest first. Privacy filtering happens
// in the feed handler because it depends on the viewer.
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdateCaption updates a post's caption
func (r *MongoPostRepository) UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) error {
	update := bson.M{"$set": bson.M{"caption": caption, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post: %w", ErrNotFound)
	}
	return nil
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post: %w", ErrNotFound)
	}
	return nil
}

// AddLike adds userID to the post's like list
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.updateMembership(ctx, postID, "$addToSet", "likes", userID)
}

// RemoveLike pulls userID from the post's like list
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.updateMembership(ctx, postID, "$pull", "likes", userID)
}

// AddComment pushes a comment id onto the post's comment list
func (r *MongoPostRepository) AddComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return r.updateMembership(ctx, postID, "$addToSet", "comments", commentID)
}

// RemoveComment pulls a comment id from the post's comment list
func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return r.updateMembership(ctx, postID, "$pull", "comments", commentID)
}

func (r *MongoPostRepository) updateMembership(ctx context.Context, postID primitive.ObjectID, op, field string, memberID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{op: bson.M{field: memberID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post: %w", ErrNotFound)
	}
	return nil
}
