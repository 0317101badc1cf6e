package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/kinjaldesarla/PostIt/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// fakeNotificationRepo is the minimal ledger the follow service needs
// during visibility checks.
type fakeNotificationRepo struct {
	rows   map[uint]*models.Notification
	nextID uint
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{rows: make(map[uint]*models.Notification), nextID: 1}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	n.ID = r.nextID
	r.nextID++
	copied := *n
	r.rows[n.ID] = &copied
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeNotificationRepo) FindFollow(_ context.Context, recipientID, senderID string) (*models.Notification, error) {
	for _, row := range r.rows {
		if row.RecipientID == recipientID && row.SenderID == senderID && row.Type == models.NotificationTypeFollow {
			copied := *row
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeNotificationRepo) GetByRecipientID(_ context.Context, recipientID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, row := range r.rows {
		if row.RecipientID == recipientID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.Status = status
	return nil
}

func (r *fakeNotificationRepo) DeleteByID(_ context.Context, id uint) error {
	if _, ok := r.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeNotificationRepo) DeleteFollow(_ context.Context, recipientID, senderID string) error {
	for id, row := range r.rows {
		if row.RecipientID == recipientID && row.SenderID == senderID && row.Type == models.NotificationTypeFollow {
			delete(r.rows, id)
		}
	}
	return nil
}

func newUserHandler() (*UserHandler, *fakeUserRepo, *fakePostRepo, *fakeNotificationRepo) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	notifs := newFakeNotificationRepo()
	followSvc := service.NewFollowService(users, notifs)
	return NewUserHandler(users, posts, followSvc, nil), users, posts, notifs
}

func TestGetSearchUserProfilePrivate(t *testing.T) {
	handler, users, posts, _ := newUserHandler()

	viewer := users.addUser("viewer")
	target := users.addUser("target")
	target.IsPrivate = true
	posts.addPost(target.ID, "secret")

	c, rec := newTestContext(t, http.MethodGet, "/search-user/"+target.ID.Hex(), nil, viewer.ID)
	c.SetParamNames("targetId")
	c.SetParamValues(target.ID.Hex())

	if err := handler.GetSearchUserProfile(c); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body struct {
		Message string `json:"message"`
		Data    struct {
			FollowStatus string            `json:"followStatus"`
			Posts        []json.RawMessage `json:"posts"`
			TotalPost    int               `json:"totalPost"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Message != "This account is private" {
		t.Fatalf("message = %q", body.Message)
	}
	if len(body.Data.Posts) != 0 || body.Data.TotalPost != 0 {
		t.Fatal("posts must be withheld from a non-follower")
	}
	if body.Data.FollowStatus != "none" {
		t.Fatalf("followStatus = %q, want none", body.Data.FollowStatus)
	}
}

func TestGetSearchUserProfileAsFollower(t *testing.T) {
	handler, users, posts, _ := newUserHandler()

	viewer := users.addUser("viewer")
	target := users.addUser("target")
	target.IsPrivate = true
	target.Followers = append(target.Followers, viewer.ID)
	viewer.Following = append(viewer.Following, target.ID)
	posts.addPost(target.ID, "for followers")

	c, rec := newTestContext(t, http.MethodGet, "/search-user/"+target.ID.Hex(), nil, viewer.ID)
	c.SetParamNames("targetId")
	c.SetParamValues(target.ID.Hex())

	if err := handler.GetSearchUserProfile(c); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body struct {
		Data struct {
			FollowStatus string            `json:"followStatus"`
			Posts        []json.RawMessage `json:"posts"`
			TotalPost    int               `json:"totalPost"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Data.FollowStatus != "following" {
		t.Fatalf("followStatus = %q, want following", body.Data.FollowStatus)
	}
	if body.Data.TotalPost != 1 || len(body.Data.Posts) != 1 {
		t.Fatal("an accepted follower must see the post grid")
	}
}

func TestGetSearchUserProfileRequested(t *testing.T) {
	handler, users, _, notifs := newUserHandler()

	viewer := users.addUser("viewer")
	target := users.addUser("target")
	target.IsPrivate = true
	notifs.rows[1] = &models.Notification{
		ID:          1,
		RecipientID: target.ID.Hex(),
		SenderID:    viewer.ID.Hex(),
		Type:        models.NotificationTypeFollow,
		Status:      models.FollowStatusPending,
	}

	c, rec := newTestContext(t, http.MethodGet, "/search-user/"+target.ID.Hex(), nil, viewer.ID)
	c.SetParamNames("targetId")
	c.SetParamValues(target.ID.Hex())

	if err := handler.GetSearchUserProfile(c); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body struct {
		Data struct {
			FollowStatus string `json:"followStatus"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Data.FollowStatus != "requested" {
		t.Fatalf("followStatus = %q, want requested", body.Data.FollowStatus)
	}
}

func TestGetFollowersFollowingGated(t *testing.T) {
	handler, users, _, _ := newUserHandler()

	stranger := users.addUser("stranger")
	target := users.addUser("target")
	target.IsPrivate = true

	c, _ := newTestContext(t, http.MethodGet, "/profile-follower-following/"+target.ID.Hex(), nil, stranger.ID)
	c.SetParamNames("userId")
	c.SetParamValues(target.ID.Hex())

	err := handler.GetFollowersFollowing(c)
	if apperr.Status(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	// the owner always sees their own lists
	c, rec := newTestContext(t, http.MethodGet, "/profile-follower-following/"+target.ID.Hex(), nil, target.ID)
	c.SetParamNames("userId")
	c.SetParamValues(target.ID.Hex())
	if err := handler.GetFollowersFollowing(c); err != nil {
		t.Fatalf("owner request failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("owner request status = %d", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	handler, users, _, _ := newUserHandler()

	user := users.addUser("alice")
	hashed, err := bcrypt.GenerateFromPassword([]byte("oldpass1!"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	user.Password = string(hashed)

	request := func(payload string) error {
		body := strings.NewReader(payload)
		c, _ := newTestContext(t, http.MethodPatch, "/change-password", body, user.ID)
		return handler.ChangePassword(c)
	}

	if err := request(`{"old_password":"wrong","new_password":"newpass1!","confirm_password":"newpass1!"}`); apperr.Status(err) != http.StatusBadRequest {
		t.Fatalf("wrong old password must be a 400, got %v", err)
	}
	if err := request(`{"old_password":"oldpass1!","new_password":"weakpass","confirm_password":"weakpass"}`); apperr.Status(err) != http.StatusBadRequest {
		t.Fatalf("policy-violating password must be a 400, got %v", err)
	}
	if err := request(`{"old_password":"oldpass1!","new_password":"newpass1!","confirm_password":"different1!"}`); apperr.Status(err) != http.StatusBadRequest {
		t.Fatalf("mismatched confirmation must be a 400, got %v", err)
	}
	if err := request(`{"old_password":"oldpass1!","new_password":"newpass1!","confirm_password":"newpass1!"}`); err != nil {
		t.Fatalf("valid change failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("newpass1!")) != nil {
		t.Fatal("new password not stored")
	}
}

func TestEditProfileTogglePrivacy(t *testing.T) {
	handler, users, _, _ := newUserHandler()
	user := users.addUser("alice")

	body := strings.NewReader(`{"bio":"new bio","is_private":true}`)
	c, _ := newTestContext(t, http.MethodPatch, "/edit-profile", body, user.ID)
	if err := handler.EditProfile(c); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if !user.IsPrivate {
		t.Fatal("is_private not applied")
	}
	if user.Bio != "new bio" {
		t.Fatalf("bio = %q", user.Bio)
	}
}

func TestEditProfileNormalizesUsername(t *testing.T) {
	handler, users, _, _ := newUserHandler()
	user := users.addUser("alice")

	body := strings.NewReader(`{"username":"  NewAlice "}`)
	c, _ := newTestContext(t, http.MethodPatch, "/edit-profile", body, user.ID)
	if err := handler.EditProfile(c); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if user.Username != "newalice" {
		t.Fatalf("username = %q, want newalice", user.Username)
	}
}
