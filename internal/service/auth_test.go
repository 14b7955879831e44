package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/backend"
)

func newAuthService(a *fakeAuth) *AuthService {
	return NewAuthService(&backend.Client{Auth: a}, apperror.Normalizer{}, discardLogger())
}

func TestAuthService_LoginValidation(t *testing.T) {
	a := &fakeAuth{}
	_, err := newAuthService(a).Login(context.Background(), map[string]any{"password": "x"})

	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "이메일을 입력해주세요.", err.Error())
	assert.Empty(t, a.signInEmail, "backend is not called on invalid input")
}

func TestAuthService_LoginMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"bad credentials", apperror.Backend(apperror.CodeInvalidCredentials, "Invalid login credentials"), "이메일 또는 비밀번호가 올바르지 않습니다."},
		{"unconfirmed", apperror.Backend(apperror.CodeEmailNotConfirmed, "Email not confirmed"), MsgEmailNotConfirmed},
		{"unknown", apperror.Backend("XX000", "boom"), MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAuthService(&fakeAuth{signInErr: tt.err}).Login(context.Background(), map[string]any{
				"email":    "me@example.com",
				"password": "secret1",
			})
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestAuthService_LoginTrimsEmail(t *testing.T) {
	a := &fakeAuth{}
	user, err := newAuthService(a).Login(context.Background(), map[string]any{"email": " me@example.com ", "password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", a.signInEmail)
	assert.Equal(t, "u-1", user.ID)
}

func TestAuthService_SignUp(t *testing.T) {
	a := &fakeAuth{}
	res, err := newAuthService(a).SignUp(context.Background(), map[string]any{
		"email":           "new@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}, "http://localhost:3000/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "u-new", res.User.ID)
	assert.Equal(t, "http://localhost:3000/auth/callback", a.redirectTo)
}

func TestAuthService_SignUpErrors(t *testing.T) {
	_, err := newAuthService(&fakeAuth{}).SignUp(context.Background(), map[string]any{
		"email":           "new@example.com",
		"password":        "secret1",
		"confirmPassword": "secret2",
	}, "")
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "비밀번호가 일치하지 않습니다.", err.Error())

	exists := &fakeAuth{signUpErr: apperror.Backend(apperror.CodeUserExists, "User already registered")}
	_, err = newAuthService(exists).SignUp(context.Background(), map[string]any{
		"email":           "dup@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}, "")
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "이미 가입된 이메일입니다.", err.Error())
}

func TestAuthService_Callback(t *testing.T) {
	a := &fakeAuth{}
	require.NoError(t, newAuthService(a).Callback(context.Background(), "abc"))
	assert.Equal(t, "abc", a.exchanged)

	assert.Error(t, newAuthService(&fakeAuth{}).Callback(context.Background(), ""))

	failing := &fakeAuth{exchangeErr: apperror.Backend(apperror.CodeFlowStateNotFound, "invalid flow state")}
	err := newAuthService(failing).Callback(context.Background(), "stale")
	assert.Equal(t, apperror.CodeFlowStateNotFound, apperror.CodeOf(err))
}

func TestAuthService_SignInWithGitHub(t *testing.T) {
	a := &fakeAuth{}
	user, err := newAuthService(a).SignInWithGitHub(context.Background(), &auth.GitHubUser{
		ID:        42,
		Login:     "octocat",
		Email:     "octo@example.com",
		AvatarURL: "https://avatars.example.com/42",
	})
	require.NoError(t, err)

	assert.Equal(t, "u-gh", user.ID)
	assert.Equal(t, backend.Identity{
		Provider:  "github",
		Subject:   "42",
		Email:     "octo@example.com",
		Name:      "octocat",
		AvatarURL: "https://avatars.example.com/42",
	}, a.lastIdentity)

	_, err = newAuthService(a).SignInWithGitHub(context.Background(), nil)
	assert.Error(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	a := &fakeAuth{}
	require.NoError(t, newAuthService(a).Logout(context.Background()))
	assert.True(t, a.signedOut)
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/dashboard", "/dashboard"},
		{"/posts?page=2", "/posts?page=2"},
		{"", "/"},
		{"dashboard", "/"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"https://evil.example.com/", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeRedirect(tt.target, "/"), "SafeRedirect(%q)", tt.target)
	}
}
