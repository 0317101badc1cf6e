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

// UserRepository defines the interface for user data operations. The
// membership mutators touch exactly one side of one document each; keeping
// the two sides symmetric is the follow service's job.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user document
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	if user.Bio == "" {
		user.Bio = models.DefaultBio
	}
	if user.ProfilePhoto == "" {
		user.ProfilePhoto = models.DefaultProfilePhoto
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ObjectID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByIdentifier retrieves a user by username or email
func (r *MongoUserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}})
}

// GetUserByUsernameOrEmail retrieves a user matching either field, used for
// duplicate checks at signup
func (r *MongoUserRepository) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
}

// GetUserByFirebaseUID retrieves a user linked to a Firebase UID
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": firebaseUID})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users for a batch of ids
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile persists the editable profile fields of a user
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"fullname":          user.Fullname,
		"username":          user.Username,
		"bio":               user.Bio,
		"profile_photo":     user.ProfilePhoto,
		"profile_photo_key": user.ProfilePhotoKey,
		"is_private":        user.IsPrivate,
		"firebase_uid":      user.FirebaseUID,
		"updated_at":        user.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}

// SetRefreshToken stores (or clears, with an empty token) the refresh token
func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	var update bson.M
	if token == "" {
		update = bson.M{"$unset": bson.M{"refresh_token": 1}}
	} else {
		update = bson.M{"$set": bson.M{"refresh_token": token}}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// UpdatePassword replaces the stored password hash
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password":   passwordHash,
		"updated_at": time.Now(),
	}})
	return err
}

// SearchUsers searches usernames case-insensitively
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	filter := bson.M{"username": bson.M{"$regex": query, "$options": "i"}}
	findOptions := options.Find().SetLimit(50)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddFollower adds followerID to userID's followers list ($addToSet keeps
// the operation idempotent)
func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateMembership(ctx, userID, "$addToSet", "followers", followerID)
}

// RemoveFollower pulls followerID from userID's followers list
func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateMembership(ctx, userID, "$pull", "followers", followerID)
}

// AddFollowing adds followingID to userID's following list
func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error {
	return r.updateMembership(ctx, userID, "$addToSet", "following", followingID)
}

// RemoveFollowing pulls followingID from userID's following list
func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error {
	return r.updateMembership(ctx, userID, "$pull", "following", followingID)
}

func (r *MongoUserRepository) updateMembership(ctx context.Context, userID primitive.ObjectID, op, field string, memberID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{op: bson.M{field: memberID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}
