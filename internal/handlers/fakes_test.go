package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/kinjaldesarla/PostIt/validators"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the handler tests.

type fakePostRepo struct {
	posts map[primitive.ObjectID]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (r *fakePostRepo) addPost(ownerID primitive.ObjectID, caption string) *models.Post {
	post := &models.Post{
		ID:       primitive.NewObjectID(),
		OwnerID:  ownerID,
		Caption:  caption,
		Likes:    []primitive.ObjectID{},
		Comments: []primitive.ObjectID{},
	}
	r.posts[post.ID] = post
	return post
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post: %w", repositories.ErrNotFound)
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetPostsByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	var out []models.Post
	for _, post := range r.posts {
		if post.OwnerID == ownerID {
			out = append(out, *post)
		}
	}
	return out, nil
}

func (r *fakePostRepo) GetAllPosts(_ context.Context) ([]models.Post, error) {
	var out []models.Post
	for _, post := range r.posts {
		out = append(out, *post)
	}
	return out, nil
}

func (r *fakePostRepo) UpdateCaption(_ context.Context, id primitive.ObjectID, caption string) error {
	post, ok := r.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Caption = caption
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	post, ok := r.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Likes = appendUnique(post.Likes, userID)
	return nil
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	post, ok := r.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Likes = removeID(post.Likes, userID)
	return nil
}

func (r *fakePostRepo) AddComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	post, ok := r.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Comments = appendUnique(post.Comments, commentID)
	return nil
}

func (r *fakePostRepo) RemoveComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	post, ok := r.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Comments = removeID(post.Comments, commentID)
	return nil
}

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (r *fakeCommentRepo) addComment(postID, ownerID primitive.ObjectID, text string) *models.Comment {
	comment := &models.Comment{
		ID:      primitive.NewObjectID(),
		PostID:  postID,
		OwnerID: ownerID,
		Text:    text,
		Likes:   []primitive.ObjectID{},
	}
	r.comments[comment.ID] = comment
	return comment
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment: %w", repositories.ErrNotFound)
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) GetCommentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, id := range ids {
		if comment, ok := r.comments[id]; ok {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) AddLike(_ context.Context, commentID, userID primitive.ObjectID) error {
	comment, ok := r.comments[commentID]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Likes = appendUnique(comment.Likes, userID)
	return nil
}

func (r *fakeCommentRepo) RemoveLike(_ context.Context, commentID, userID primitive.ObjectID) error {
	comment, ok := r.comments[commentID]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Likes = removeID(comment.Likes, userID)
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) addUser(username string) *models.User {
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repositories.ErrNotFound)
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUserByUsernameOrEmail(ctx context.Context, username, _ string) (*models.User, error) {
	return r.GetUserByIdentifier(ctx, username)
}

func (r *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, user := range r.users {
		if user.FirebaseUID == uid {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	if user, ok := r.users[id]; ok {
		user.RefreshToken = token
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	if user, ok := r.users[id]; ok {
		user.Password = hash
	}
	return nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		if strings.Contains(user.Username, query) {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Followers = appendUnique(user.Followers, followerID)
	return nil
}

func (r *fakeUserRepo) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Followers = removeID(user.Followers, followerID)
	return nil
}

func (r *fakeUserRepo) AddFollowing(_ context.Context, userID, followingID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Following = appendUnique(user.Following, followingID)
	return nil
}

func (r *fakeUserRepo) RemoveFollowing(_ context.Context, userID, followingID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Following = removeID(user.Following, followingID)
	return nil
}

func appendUnique(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// newTestContext builds an echo context with the validator installed and the
// authenticated user id set the way the JWT middleware does.
func newTestContext(t *testing.T, method, target string, body io.Reader, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !userID.IsZero() {
		c.Set("userID", userID.Hex())
	}
	return c, rec
}
