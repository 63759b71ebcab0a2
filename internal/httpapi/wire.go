package httpapi

import (
	"net/http"

	"github.com/bytedance/sonic"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-feed-cache/mutation"
)

// Routes shared by the server and the HTTP gateway client.
const (
	MutationPath = "/api/mutations/"
	ProfilePath  = "/api/profiles/"
	FeedPath     = "/api/feed"

	// UserHeader carries the viewer id for HeaderAuthenticator.
	UserHeader = "X-User-ID"
	// UserNameHeader carries the viewer display name.
	UserNameHeader = "X-User-Name"
)

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

// ErrorPayload is the subset of a go-errors Error sent to clients.
type ErrorPayload struct {
	Category         goerrors.Category         `json:"category"`
	Code             int                       `json:"code,omitempty"`
	TextCode         string                    `json:"text_code,omitempty"`
	Message          string                    `json:"message"`
	ValidationErrors goerrors.ValidationErrors `json:"validation_errors,omitempty"`
}

// ToError rebuilds a categorized error from a decoded body.
func (p ErrorPayload) ToError() error {
	err := goerrors.New(p.Message, p.Category)
	err.Code = p.Code
	err.TextCode = p.TextCode
	err.ValidationErrors = p.ValidationErrors
	return err
}

// StatusFor maps an error to the HTTP status the API answers with.
func StatusFor(err error) int {
	switch mutation.KindOf(err) {
	case mutation.KindNone:
		return http.StatusOK
	case mutation.KindValidation:
		return http.StatusBadRequest
	case mutation.KindAuthorization:
		if goerrors.IsCategory(err, goerrors.CategoryAuthz) {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case mutation.KindNotFound:
		return http.StatusNotFound
	case mutation.KindConflict:
		return http.StatusConflict
	case mutation.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorPayload(err error) ErrorPayload {
	var gerr *goerrors.Error
	if goerrors.As(err, &gerr) {
		return ErrorPayload{
			Category:         gerr.Category,
			Code:             StatusFor(err),
			TextCode:         gerr.TextCode,
			Message:          gerr.Message,
			ValidationErrors: gerr.ValidationErrors,
		}
	}
	return ErrorPayload{
		Category: goerrors.CategoryInternal,
		Code:     http.StatusInternalServerError,
		TextCode: "INTERNAL_ERROR",
		Message:  "An unexpected error occurred",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":{"category":"internal","message":"encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), ErrorBody{Error: errorPayload(err)})
}
