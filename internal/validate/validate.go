// Package validate holds the field rules applied to raw request input before any
// backend call. Every rule for a request runs; violations are collected into one
// Errors set instead of stopping at the first.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength    = 200
	MinMessageLength  = 10
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit, counted in bytes, not characters.
	MaxPasswordBytes = 72
	DefaultCategory   = "general"
	AllCategories     = "all"
)

// Categories is the fixed set a post may be filed under.
var Categories = []string{"tech", "daily", "general"}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a field name to its message. An empty set means the input is valid.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

// First returns the first invalid field in the given order.
func (e Errors) First(order ...string) (field, message string) {
	for _, f := range order {
		if msg, ok := e[f]; ok {
			return f, msg
		}
	}
	return "", ""
}

// String reads key from raw input. Missing keys and non-string values read as "".
func String(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Contact validates a contact form submission.
func Contact(input map[string]any) Errors {
	errs := Errors{}

	if strings.TrimSpace(String(input, "name")) == "" {
		errs["name"] = "이름을 입력해주세요"
	}

	email := String(input, "email")
	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "이메일을 입력해주세요"
	case !IsEmail(email):
		errs["email"] = "올바른 이메일 형식이 아닙니다"
	}

	if strings.TrimSpace(String(input, "subject")) == "" {
		errs["subject"] = "제목을 입력해주세요"
	}

	message := strings.TrimSpace(String(input, "message"))
	switch {
	case message == "":
		errs["message"] = "메시지를 입력해주세요"
	case utf8.RuneCountInString(message) < MinMessageLength:
		errs["message"] = "메시지는 10자 이상 입력해주세요"
	}

	return errs
}

// PostFieldOrder is the order single-message responses surface post errors in.
var PostFieldOrder = []string{"title", "content", "category"}

// Post validates post input. requireContent is set on the HTML form path.
func Post(input map[string]any, requireContent bool) Errors {
	errs := Errors{}

	title := strings.TrimSpace(String(input, "title"))
	switch {
	case title == "":
		errs["title"] = "제목을 입력해주세요."
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs["title"] = "제목은 200자 이내로 입력해주세요."
	}

	if requireContent && strings.TrimSpace(String(input, "content")) == "" {
		errs["content"] = "내용을 입력해주세요."
	}

	if raw, ok := input["category"]; ok && raw != nil {
		if c, isString := raw.(string); !isString || (c != "" && !IsCategory(c)) {
			errs["category"] = "올바르지 않은 카테고리입니다."
		}
	}

	return errs
}

// PostPatch validates a partial post update: only the keys present are checked.
func PostPatch(input map[string]any) Errors {
	errs := Errors{}

	if raw, ok := input["title"]; ok {
		title, _ := raw.(string)
		title = strings.TrimSpace(title)
		switch {
		case title == "":
			errs["title"] = "제목을 입력해주세요."
		case utf8.RuneCountInString(title) > MaxTitleLength:
			errs["title"] = "제목은 200자 이내로 입력해주세요."
		}
	}

	if raw, ok := input["content"]; ok {
		if _, isString := raw.(string); !isString {
			errs["content"] = "내용을 입력해주세요."
		}
	}

	if raw, ok := input["category"]; ok {
		if c, _ := raw.(string); !IsCategory(c) {
			errs["category"] = "올바르지 않은 카테고리입니다."
		}
	}

	return errs
}

// SignUpFieldOrder is the order the sign-up form reports errors in.
var SignUpFieldOrder = []string{"email", "password", "confirmPassword"}

// SignUp validates the sign-up form: email, password and its confirmation.
func SignUp(input map[string]any) Errors {
	errs := Errors{}

	email := strings.TrimSpace(String(input, "email"))
	switch {
	case email == "":
		errs["email"] = "이메일을 입력해주세요."
	case !IsEmail(email):
		errs["email"] = "올바른 이메일 형식이 아닙니다."
	}

	for field, msg := range Password(String(input, "password"), String(input, "confirmPassword")) {
		errs[field] = msg
	}

	return errs
}

// Password checks a new password and its confirmation.
func Password(password, confirm string) Errors {
	errs := Errors{}

	switch {
	case password == "":
		errs["password"] = "비밀번호를 입력해주세요."
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errs["password"] = "비밀번호는 최소 6자 이상이어야 합니다."
	case len(password) > MaxPasswordBytes:
		errs["password"] = "비밀번호가 너무 깁니다. 영문 기준 72자 이내로 입력해주세요."
	case password != confirm:
		errs["confirmPassword"] = "비밀번호가 일치하지 않습니다."
	}

	return errs
}

// Login checks the sign-in form has both credentials.
func Login(input map[string]any) Errors {
	errs := Errors{}
	if strings.TrimSpace(String(input, "email")) == "" {
		errs["email"] = "이메일을 입력해주세요."
	}
	if String(input, "password") == "" {
		errs["password"] = "비밀번호를 입력해주세요."
	}
	return errs
}
