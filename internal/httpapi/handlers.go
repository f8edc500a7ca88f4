package httpapi

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"quiz-manager/internal/account"
	"quiz-manager/internal/quiz"
)

func (a *API) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if !a.decodeAndValidate(w, r, &request, true) {
		return
	}

	var profile account.Profile
	if request.Profile != nil {
		profile = *request.Profile
	}

	if _, err := a.accounts.Register(r.Context(), request.Username, request.Password, profile); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "registration successful"})
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if !a.decodeAndValidate(w, r, &request, false) {
		return
	}

	user, err := a.accounts.Authenticate(r.Context(), request.Username, request.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := a.tokens.Issue(user.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// HandleLogout always succeeds. A valid bearer token is revoked when a
// revocation list is configured.
func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok && a.tokens.Revocable() {
		claims, err := a.tokens.Verify(r.Context(), token)
		if err == nil {
			if err := a.tokens.Revoke(r.Context(), claims); err != nil {
				log.Printf("revoke token for %q: %v", claims.Username, err)
			}
		}
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (a *API) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.quizzes.List(r.Context(), usernameFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) HandleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var request quizRequest
	if !a.decodeAndValidate(w, r, &request, false) {
		return
	}

	created, err := a.quizzes.Create(r.Context(), usernameFromContext(r.Context()), quizDraft(request))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// quizDraft keeps the client id so the ownership check can see it. Client
// attempts are dropped.
func quizDraft(request quizRequest) quiz.Quiz {
	return quiz.Quiz{
		ID:        request.ID,
		QuizName:  request.QuizName,
		Questions: request.Questions,
	}
}

func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	item, err := a.quizzes.Get(r.Context(), usernameFromContext(r.Context()), mux.Vars(r)["quiz_name"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) HandleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var request updateQuizRequest
	if !a.decodeAndValidate(w, r, &request, false) {
		return
	}

	updated, err := a.quizzes.Update(r.Context(), usernameFromContext(r.Context()), mux.Vars(r)["quiz_name"], request.Questions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) HandleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizName := mux.Vars(r)["quiz_name"]
	if err := a.quizzes.Delete(r.Context(), usernameFromContext(r.Context()), quizName); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("quiz '%s' deleted", quizName)})
}

func (a *API) HandleAttemptQuiz(w http.ResponseWriter, r *http.Request) {
	var answers []string
	if err := decodeJSON(r, &answers, false); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "answers must be a JSON array of strings"})
		return
	}

	result, err := a.quizzes.Attempt(r.Context(), usernameFromContext(r.Context()), mux.Vars(r)["quiz_name"], answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleQuizHistory(w http.ResponseWriter, r *http.Request) {
	attempts, err := a.quizzes.History(r.Context(), usernameFromContext(r.Context()), mux.Vars(r)["quiz_name"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (a *API) HandleUpload(w http.ResponseWriter, r *http.Request) {
	filename, location, ok := a.saveUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Filename: filename, FileLocation: location})
}

func (a *API) HandleProcessPDF(w http.ResponseWriter, r *http.Request) {
	user, err := a.accounts.FindByUsername(r.Context(), usernameFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_, location, ok := a.saveUpload(w, r)
	if !ok {
		return
	}

	csvPath, err := a.converter.Convert(r.Context(), location, user.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, processPDFResponse{CSVFilename: filepath.Base(csvPath)})
}

// saveUpload stores the multipart "file" field under the static directory,
// replacing any file with the same name. It writes the error response itself
// and reports false on failure.
func (a *API) saveUpload(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
			return "", "", false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file is required"})
		return "", "", false
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "." || filename == ".." || filename == string(filepath.Separator) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid filename"})
		return "", "", false
	}

	if err := os.MkdirAll(a.staticDir, 0o755); err != nil {
		writeServiceError(w, fmt.Errorf("create static dir: %w", err))
		return "", "", false
	}

	location := filepath.Join(a.staticDir, filename)
	out, err := os.Create(location)
	if err != nil {
		writeServiceError(w, fmt.Errorf("create upload: %w", err))
		return "", "", false
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		writeServiceError(w, fmt.Errorf("write upload: %w", err))
		return "", "", false
	}
	if err := out.Close(); err != nil {
		writeServiceError(w, fmt.Errorf("close upload: %w", err))
		return "", "", false
	}

	return filename, location, true
}
