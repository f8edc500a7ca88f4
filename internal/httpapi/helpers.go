package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-manager/internal/account"
	"quiz-manager/internal/auth"
	"quiz-manager/internal/pdfconv"
	"quiz-manager/internal/quiz"
)

var errInvalidBody = errors.New("invalid JSON body")

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
	case errors.Is(err, quiz.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
	case errors.Is(err, account.ErrDuplicateUsername):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username already exists"})
	case errors.Is(err, quiz.ErrQuizAlreadyOwned):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quiz already exists"})
	case errors.Is(err, account.ErrUnknownUser):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username does not exist"})
	case errors.Is(err, account.ErrBadPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "incorrect password"})
	case errors.Is(err, account.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
	case errors.Is(err, pdfconv.ErrNoQuestions):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: pdfconv.ErrNoQuestions.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// decodeJSON reads a single JSON value into dst. When strict is set unknown
// fields are rejected.
func decodeJSON(r *http.Request, dst any, strict bool) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		if strict && strings.HasPrefix(err.Error(), "json: unknown field") {
			return fmt.Errorf("%w: %s", errInvalidBody, strings.TrimPrefix(err.Error(), "json: "))
		}
		return errInvalidBody
	}
	if decoder.Decode(&struct{}{}) != io.EOF {
		return errInvalidBody
	}
	return nil
}

// decodeAndValidate writes a 400 response and returns false when the body
// cannot be decoded or fails validation.
func (a *API) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, strict bool) bool {
	if err := decodeJSON(r, dst, strict); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "invalid request"
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		field := fieldErr.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if fieldErr.Tag() == "required" {
			messages = append(messages, field+" is required")
			continue
		}
		messages = append(messages, field+" is invalid")
	}
	return strings.Join(messages, "; ")
}

func writeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func writeMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
