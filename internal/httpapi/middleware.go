package httpapi

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"quiz-manager/internal/auth"
)

const maxLoggedBodyBytes = 512

type contextKey string

const claimsKey contextKey = "claims"

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func usernameFromContext(ctx context.Context) string {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return ""
	}
	return claims.Username
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token missing"})
			return
		}

		claims, err := a.tokens.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
				return
			}
			log.Printf("verify token: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

type statusRecorder struct {
	http.ResponseWriter

	statusCode   int
	wroteHeader  bool
	maxLogBytes  int
	bytesWritten int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	written, err := r.ResponseWriter.Write(p)
	r.bytesWritten += written
	r.capture(p[:written])
	return written, err
}

func (r *statusRecorder) capture(p []byte) {
	remaining := r.maxLogBytes - r.logBody.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			r.truncated = true
		}
		return
	}
	if len(p) > remaining {
		p = p[:remaining]
		r.truncated = true
	}
	r.logBody.Write(p)
}

// logRequests writes one line per request. Error responses include a preview
// of the body.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedBodyBytes,
		}

		next.ServeHTTP(recorder, r)

		elapsed := time.Since(started).Round(time.Microsecond)
		if recorder.statusCode < http.StatusBadRequest {
			log.Printf("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, elapsed)
			return
		}

		body := strings.TrimSpace(recorder.logBody.String())
		if recorder.truncated {
			body += "..."
		}
		log.Printf("%s %s -> %d (%d bytes, %s) body=%q", r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, elapsed, body)
	})
}

func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, recovered, debug.Stack())
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
