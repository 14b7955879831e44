package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/validate"
)

const MsgContactSent = "메시지가 성공적으로 전송되었습니다."

var contactFieldOrder = []string{"name", "email", "subject", "message"}

// ContactMessage is a validated contact form submission.
type ContactMessage struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	Timestamp time.Time
}

// ContactService accepts contact form submissions. Delivery is the log line.
type ContactService struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewContactService(logger *slog.Logger) *ContactService {
	return &ContactService{logger: logger, now: time.Now}
}

// Submit validates input and records the message. The returned AppError
// carries every invalid field.
func (s *ContactService) Submit(_ context.Context, input map[string]any) (*ContactMessage, error) {
	if errs := validate.Contact(input); !errs.Valid() {
		field, _ := errs.First(contactFieldOrder...)
		return nil, apperror.Invalid(errs, field)
	}

	msg := &ContactMessage{
		Name:      strings.TrimSpace(validate.String(input, "name")),
		Email:     strings.TrimSpace(validate.String(input, "email")),
		Subject:   strings.TrimSpace(validate.String(input, "subject")),
		Message:   strings.TrimSpace(validate.String(input, "message")),
		Timestamp: s.now().UTC(),
	}

	s.logger.Info("contact form submission",
		slog.String("name", msg.Name),
		slog.String("email", msg.Email),
		slog.String("subject", msg.Subject),
		slog.String("message", msg.Message),
		slog.String("timestamp", msg.Timestamp.Format(time.RFC3339Nano)),
	)

	return msg, nil
}
