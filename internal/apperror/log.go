package apperror

import (
	"errors"
	"log/slog"
	"time"
)

// Log records a caught error with the operation that caught it and an ISO-8601
// timestamp. Backend errors also log their code and details.
func Log(logger *slog.Logger, context string, err error) {
	if logger == nil || err == nil {
		return
	}

	attrs := []any{
		slog.String("context", context),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339Nano)),
		slog.String("error", err.Error()),
	}

	var be *BackendError
	if errors.As(err, &be) {
		attrs = append(attrs, slog.String("code", be.Code))
		if be.Details != "" {
			attrs = append(attrs, slog.String("details", be.Details))
		}
	}

	logger.Error(context, attrs...)
}
