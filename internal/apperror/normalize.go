package apperror

import (
	"errors"
	"strings"
)

// DefaultMessage is shown whenever nothing more specific is known.
const DefaultMessage = "오류가 발생했습니다. 잠시 후 다시 시도해주세요."

const debugPrefix = "[DEV] "

// messages is ordered: generic errors are matched by scanning for codes in their
// message, and the first hit wins.
var messages = []struct {
	code    string
	message string
}{
	// SQLSTATE
	{"42501", "이 작업을 수행할 권한이 없습니다."},
	{"23505", "이미 존재하는 데이터입니다."},
	{"23503", "연결된 데이터가 존재하지 않습니다."},
	{"23502", "필수 입력 항목이 누락되었습니다."},
	{"22001", "입력한 내용이 너무 깁니다."},
	{"22P02", "잘못된 형식의 데이터입니다."},
	{"42P01", "요청한 테이블을 찾을 수 없습니다."},
	{"42703", "요청한 필드를 찾을 수 없습니다."},
	{"28000", "인증에 실패했습니다."},
	{"28P01", "비밀번호가 올바르지 않습니다."},
	{"57014", "요청 시간이 초과되었습니다."},

	// PostgREST
	{"PGRST116", "요청한 데이터를 찾을 수 없습니다."},
	{"PGRST301", "요청한 리소스를 찾을 수 없습니다."},
	{"PGRST100", "잘못된 요청 형식입니다."},
	{"PGRST200", "서버 내부 오류가 발생했습니다."},

	// auth
	{"invalid_credentials", "이메일 또는 비밀번호가 올바르지 않습니다."},
	{"email_not_confirmed", "이메일 인증이 필요합니다."},
	{"user_already_exists", "이미 가입된 이메일입니다."},
	{"weak_password", "비밀번호가 너무 약합니다. 최소 6자 이상 입력해주세요."},
	{"password_too_long", "비밀번호가 너무 깁니다. 영문 기준 72자 이내로 입력해주세요."},
	{"invalid_email", "올바른 이메일 형식이 아닙니다."},
	{"signup_disabled", "현재 회원가입이 비활성화되어 있습니다."},
	{"user_not_found", "등록되지 않은 사용자입니다."},
	{"session_expired", "세션이 만료되었습니다. 다시 로그인해주세요."},
}

func lookup(code string) (string, bool) {
	if code == "" {
		return "", false
	}
	for _, m := range messages {
		if m.code == code {
			return m.message, true
		}
	}
	return "", false
}

// KnownCode reports whether code has an entry in the message table.
func KnownCode(code string) bool {
	_, ok := lookup(code)
	return ok
}

// Result is the normalized shape of a failure. Code is the backend's own code
// whenever the failure came from the backend, recognized or not, and empty for
// any other error that matched no table entry.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Normalizer maps raw backend failures to display messages and stable codes.
// Debug enables the raw-message passthrough used outside production.
type Normalizer struct {
	Debug bool
}

// Message returns the display string for err. It never returns "".
func (n Normalizer) Message(err error) string {
	if err == nil {
		return DefaultMessage
	}
	var be *BackendError
	if errors.As(err, &be) {
		if msg, ok := lookup(be.Code); ok {
			return msg
		}
		return n.fallback(be.Message)
	}
	return n.fallback(err.Error())
}

// Normalize classifies err. A nil error is a success.
func (n Normalizer) Normalize(err error) Result {
	if err == nil {
		return Result{Success: true}
	}

	var be *BackendError
	if errors.As(err, &be) {
		res := Result{Error: n.Message(be), Code: be.Code}
		if n.Debug {
			res.Details = be.Details
		}
		return res
	}

	// Auth failures often arrive as plain errors with the code in the text.
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, m := range messages {
		if strings.Contains(lower, strings.ToLower(m.code)) {
			return Result{Error: m.message, Code: m.code}
		}
	}

	return Result{Error: n.fallback(msg)}
}

func (n Normalizer) fallback(raw string) string {
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "jwt expired"), strings.Contains(lower, "token expired"):
		return "세션이 만료되었습니다. 다시 로그인해주세요."
	case strings.Contains(lower, "network"), strings.Contains(lower, "fetch"):
		return "네트워크 연결을 확인해주세요."
	case strings.Contains(lower, "timeout"):
		return "요청 시간이 초과되었습니다. 다시 시도해주세요."
	}

	if n.Debug && raw != "" {
		return debugPrefix + raw
	}
	return DefaultMessage
}

var authCodes = []string{
	CodeInvalidCredentials,
	CodeEmailNotConfirmed,
	CodeUserExists,
	CodeSessionExpired,
	CodeUserNotFound,
}

// IsAuth reports whether err came from the auth side of the backend.
func IsAuth(err error) bool {
	if err == nil {
		return false
	}
	code := CodeOf(err)
	msg := err.Error()
	for _, c := range authCodes {
		if code == c || strings.Contains(msg, c) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(msg), "auth")
}

// IsNetwork reports whether err looks like a transport failure.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "network") ||
		strings.Contains(msg, "fetch") ||
		strings.Contains(msg, "connection refused")
}
