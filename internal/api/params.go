package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/ranking"
	"github.com/onnwee/tagqa/internal/validate"
)

// pathParams splits the escaped path below prefix into exactly n
// unescaped segments. Tags may contain spaces, commas or ampersands, so
// segments are unescaped one at a time.
func pathParams(r *http.Request, prefix string, n int) ([]string, bool) {
	rest, ok := strings.CutPrefix(r.URL.EscapedPath(), prefix)
	if !ok {
		return nil, false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != n {
		return nil, false
	}
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil || v == "" {
			return nil, false
		}
		parts[i] = v
	}
	return parts, true
}

// invalidUserMessage tells the client their id was rejected and offers
// a fresh one, as the annotation page does.
func invalidUserMessage() string {
	return identity.MessageInvalid + " " + identity.MessageSuggestion + " " + identity.NewUUID()
}

// errorCode classifies a domain error.
func errorCode(err error) string {
	switch {
	case errors.Is(err, identity.ErrInvalidUserID):
		return ErrCodeInvalidUser
	case errors.Is(err, ranking.ErrRankingNotFound):
		return ErrCodeRankingNotFound
	case errors.Is(err, catalog.ErrInvalidSelection),
		errors.Is(err, annotation.ErrUnknownAnswer),
		errors.Is(err, annotation.ErrConfidenceOutOfRange),
		errors.Is(err, annotation.ErrReservedTrack),
		errors.Is(err, annotation.ErrFeedbackNotStored),
		errors.Is(err, validate.ErrEmpty),
		errors.Is(err, validate.ErrStringTooShort),
		errors.Is(err, validate.ErrStringTooLong),
		errors.Is(err, validate.ErrInvalidCharacters),
		errors.Is(err, validate.ErrReservedName):
		return ErrCodeValidation
	default:
		return ErrCodeInternal
	}
}

// errorMessage returns the client facing message for err under code.
func errorMessage(code string, err error) string {
	switch code {
	case ErrCodeInvalidUser:
		return invalidUserMessage()
	case ErrCodeRankingNotFound:
		return "Ranking not found"
	case ErrCodeInternal:
		return "Internal server error"
	default:
		return err.Error()
	}
}

// writeDomainError maps err to the JSON error envelope. Internal errors
// are logged; their details never reach the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	if code == ErrCodeInternal {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeCodedError(w, r, code, errorMessage(code, err))
}
