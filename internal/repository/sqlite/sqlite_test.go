package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// =========================================================================
// HELPERS
// =========================================================================

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestAccount(t *testing.T, db *DB, email string) *repository.Account {
	t.Helper()
	a := &repository.Account{ID: xid.New().String(), Email: email, PasswordHash: "hash"}
	if err := db.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return a
}

func createTestPost(t *testing.T, db *DB, author *repository.Account, title, category string) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:         xid.New().String(),
		Title:      title,
		Category:   category,
		AuthorID:   author.ID,
		AuthorName: author.User().DisplayName(),
	}
	if err := db.InsertPost(context.Background(), p); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

func strPtr(s string) *string { return &s }

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if got := apperror.CodeOf(err); got != code {
		t.Fatalf("error code = %q (err = %v), want %q", got, err, code)
	}
}

// =========================================================================
// ACCOUNTS
// =========================================================================

func TestCreateAccount_CreatesProfile(t *testing.T) {
	db := newTestDB(t)
	a := createTestAccount(t, db, "Me@Example.com")

	if a.CreatedAt.IsZero() {
		t.Error("CreateAccount() did not set CreatedAt")
	}

	p, err := db.GetProfile(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetProfile() after CreateAccount() error = %v", err)
	}
	if p.Username != nil {
		t.Errorf("new profile Username = %q, want nil", *p.Username)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestAccount(t, db, "dup@example.com")

	err := db.CreateAccount(context.Background(), &repository.Account{ID: xid.New().String(), Email: "DUP@example.com"})
	wantCode(t, err, apperror.CodeUniqueViolation)
}

func TestAccountLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "find@example.com")

	byEmail, err := db.AccountByEmail(ctx, "FIND@example.com")
	if err != nil {
		t.Fatalf("AccountByEmail() error = %v", err)
	}
	if byEmail.ID != a.ID {
		t.Errorf("AccountByEmail() ID = %q, want %q", byEmail.ID, a.ID)
	}

	_, err = db.AccountByID(ctx, "missing")
	wantCode(t, err, apperror.CodeNoRows)

	if err := db.LinkIdentity(ctx, a.ID, "github", "42"); err != nil {
		t.Fatalf("LinkIdentity() error = %v", err)
	}
	byIdentity, err := db.AccountByIdentity(ctx, "github", "42")
	if err != nil {
		t.Fatalf("AccountByIdentity() error = %v", err)
	}
	if byIdentity.ID != a.ID {
		t.Errorf("AccountByIdentity() ID = %q, want %q", byIdentity.ID, a.ID)
	}

	err = db.LinkIdentity(ctx, a.ID, "github", "42")
	wantCode(t, err, apperror.CodeUniqueViolation)
}

func TestConfirmAndRecordSignIn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "c@example.com")

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := db.ConfirmAccount(ctx, a.ID, at); err != nil {
		t.Fatalf("ConfirmAccount() error = %v", err)
	}
	if err := db.RecordSignIn(ctx, a.ID, at.Add(time.Hour)); err != nil {
		t.Fatalf("RecordSignIn() error = %v", err)
	}

	got, _ := db.AccountByID(ctx, a.ID)
	if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(at) {
		t.Errorf("ConfirmedAt = %v, want %v", got.ConfirmedAt, at)
	}
	if got.LastSignInAt == nil || !got.LastSignInAt.Equal(at.Add(time.Hour)) {
		t.Errorf("LastSignInAt = %v", got.LastSignInAt)
	}

	wantCode(t, db.ConfirmAccount(ctx, "missing", at), apperror.CodeNoRows)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "gone@example.com")
	other := createTestAccount(t, db, "stay@example.com")
	createTestPost(t, db, a, "mine", "tech")
	kept := createTestPost(t, db, other, "theirs", "tech")

	if err := db.DeleteAccount(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	_, err := db.GetProfile(ctx, a.ID)
	wantCode(t, err, apperror.CodeNoRows)

	posts, total, err := db.ListPosts(ctx, repository.PostQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if total != 1 || len(posts) != 1 || posts[0].ID != kept.ID {
		t.Errorf("after cascade got %d posts (total %d), want only %s", len(posts), total, kept.ID)
	}

	wantCode(t, db.DeleteAccount(ctx, a.ID), apperror.CodeNoRows)
}

func TestAuthCodes_SingleUse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "code@example.com")
	expires := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)

	if err := db.SaveAuthCode(ctx, "the-code", a.ID, expires); err != nil {
		t.Fatalf("SaveAuthCode() error = %v", err)
	}

	id, gotExpires, err := db.ConsumeAuthCode(ctx, "the-code")
	if err != nil {
		t.Fatalf("ConsumeAuthCode() error = %v", err)
	}
	if id != a.ID || !gotExpires.Equal(expires) {
		t.Errorf("ConsumeAuthCode() = (%q, %v), want (%q, %v)", id, gotExpires, a.ID, expires)
	}

	_, _, err = db.ConsumeAuthCode(ctx, "the-code")
	wantCode(t, err, apperror.CodeNoRows)
}

// =========================================================================
// POSTS
// =========================================================================

func TestListPosts_FilterPageAndCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "writer@example.com")

	for i := range 25 {
		category := "tech"
		if i%5 == 0 {
			category = "daily"
		}
		createTestPost(t, db, a, fmt.Sprintf("post %02d", i), category)
	}

	page3, total, err := db.ListPosts(ctx, repository.PostQuery{Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(page3) != 5 {
		t.Errorf("len(page 3) = %d, want 5", len(page3))
	}

	first, _, _ := db.ListPosts(ctx, repository.PostQuery{Limit: 1})
	if first[0].Title != "post 24" {
		t.Errorf("newest post = %q, want %q", first[0].Title, "post 24")
	}

	daily, dailyTotal, _ := db.ListPosts(ctx, repository.PostQuery{Category: "daily", Limit: 10})
	if dailyTotal != 5 || len(daily) != 5 {
		t.Errorf("daily = %d rows (total %d), want 5", len(daily), dailyTotal)
	}
	for _, p := range daily {
		if p.Category != "daily" {
			t.Errorf("filtered list returned category %q", p.Category)
		}
	}
}

func TestInsertPost_Constraints(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "w@example.com")

	tests := []struct {
		name string
		post model.Post
		code string
	}{
		{"blank title", model.Post{Title: "   ", Category: "tech", AuthorID: a.ID}, apperror.CodeCheckViolation},
		{"long title", model.Post{Title: strings.Repeat("가", 201), Category: "tech", AuthorID: a.ID}, apperror.CodeCheckViolation},
		{"bad category", model.Post{Title: "ok", Category: "news", AuthorID: a.ID}, apperror.CodeCheckViolation},
		{"unknown author", model.Post{Title: "ok", Category: "tech", AuthorID: "ghost"}, apperror.CodeForeignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.post
			p.ID = xid.New().String()
			wantCode(t, db.InsertPost(ctx, &p), tt.code)
		})
	}
}

func TestUpdatePost_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestAccount(t, db, "owner@example.com")
	other := createTestAccount(t, db, "other@example.com")
	p := createTestPost(t, db, owner, "before", "tech")

	_, err := db.UpdatePost(ctx, p.ID, other.ID, repository.PostFields{Title: strPtr("hijack")})
	wantCode(t, err, apperror.CodeNoRows)

	updated, err := db.UpdatePost(ctx, p.ID, owner.ID, repository.PostFields{Title: strPtr("after"), Content: strPtr("")})
	if err != nil {
		t.Fatalf("UpdatePost() error = %v", err)
	}
	if updated.Title != "after" || updated.Category != "tech" {
		t.Errorf("UpdatePost() = %+v", updated)
	}
	if !updated.UpdatedAt.After(p.CreatedAt) && !updated.UpdatedAt.Equal(p.CreatedAt) {
		t.Errorf("UpdatedAt %v went backwards from %v", updated.UpdatedAt, p.CreatedAt)
	}
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestAccount(t, db, "owner@example.com")
	other := createTestAccount(t, db, "other@example.com")
	p := createTestPost(t, db, owner, "keep me", "general")

	n, err := db.DeletePost(ctx, p.ID, other.ID)
	if err != nil || n != 0 {
		t.Fatalf("DeletePost() by non-owner = (%d, %v), want (0, nil)", n, err)
	}
	if _, err := db.GetPost(ctx, p.ID); err != nil {
		t.Fatalf("post should survive a non-owner delete: %v", err)
	}

	n, err = db.DeletePost(ctx, p.ID, owner.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeletePost() by owner = (%d, %v), want (1, nil)", n, err)
	}
	_, err = db.GetPost(ctx, p.ID)
	if !apperror.IsNoRows(err) {
		t.Errorf("GetPost() after delete error = %v, want no rows", err)
	}
}

// =========================================================================
// PROFILES
// =========================================================================

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestAccount(t, db, "p@example.com")
	b := createTestAccount(t, db, "q@example.com")

	got, err := db.UpdateProfile(ctx, a.ID, map[string]*string{
		"username": strPtr("gildong"),
		"bio":      strPtr("hello"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if got.Username == nil || *got.Username != "gildong" || got.Bio == nil || *got.Bio != "hello" {
		t.Errorf("UpdateProfile() = %+v", got)
	}

	cleared, err := db.UpdateProfile(ctx, a.ID, map[string]*string{"bio": nil})
	if err != nil {
		t.Fatalf("UpdateProfile(clear) error = %v", err)
	}
	if cleared.Bio != nil {
		t.Errorf("Bio = %q, want nil", *cleared.Bio)
	}

	_, err = db.UpdateProfile(ctx, b.ID, map[string]*string{"username": strPtr("gildong")})
	wantCode(t, err, apperror.CodeUniqueViolation)
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("unique violation message %q should name the column", err.Error())
	}

	_, err = db.UpdateProfile(ctx, a.ID, map[string]*string{"nickname": strPtr("x")})
	wantCode(t, err, apperror.CodeUndefinedColumn)

	_, err = db.UpdateProfile(ctx, "missing", map[string]*string{"bio": strPtr("x")})
	wantCode(t, err, apperror.CodeNoRows)
}

func TestListProfiles(t *testing.T) {
	db := newTestDB(t)
	for i := range 3 {
		createTestAccount(t, db, fmt.Sprintf("u%d@example.com", i))
	}

	profiles, total, err := db.ListProfiles(context.Background(), repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if total != 3 || len(profiles) != 2 {
		t.Errorf("ListProfiles() = %d rows, total %d; want 2, 3", len(profiles), total)
	}
}
