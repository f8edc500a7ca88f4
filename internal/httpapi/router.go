package httpapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Routes are registered flat on the root router. Nested subrouters report a
// method mismatch as not found, so 405 is only produced from the root.
func NewRouter(api *API) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(writeNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(writeMethodNotAllowed)

	r.HandleFunc("/api/register", api.HandleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", api.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", api.HandleLogout).Methods(http.MethodPost)

	protected := func(handler http.HandlerFunc) http.Handler {
		return api.requireAuth(handler)
	}
	r.Handle("/api/quizzes", protected(api.HandleListQuizzes)).Methods(http.MethodGet)
	r.Handle("/api/quizzes", protected(api.HandleCreateQuiz)).Methods(http.MethodPost)
	r.Handle("/api/quizzes/{quiz_name}", protected(api.HandleGetQuiz)).Methods(http.MethodGet)
	r.Handle("/api/quizzes/{quiz_name}", protected(api.HandleUpdateQuiz)).Methods(http.MethodPut)
	r.Handle("/api/quizzes/{quiz_name}", protected(api.HandleDeleteQuiz)).Methods(http.MethodDelete)
	r.Handle("/api/quizzes/{quiz_name}/attempt", protected(api.HandleAttemptQuiz)).Methods(http.MethodPost)
	r.Handle("/api/quizzes/{quiz_name}/history", protected(api.HandleQuizHistory)).Methods(http.MethodGet)

	r.HandleFunc("/upload", api.HandleUpload).Methods(http.MethodPost)
	r.Handle("/process-pdf", protected(api.HandleProcessPDF)).Methods(http.MethodPost)

	static := http.StripPrefix("/static/", http.FileServer(http.Dir(api.staticDir)))
	r.PathPrefix("/static/").Handler(static).Methods(http.MethodGet, http.MethodHead)

	return allowAllOrigins(logRequests(recoverPanics(r)))
}

var (
	corsMethods = []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	corsHeaders = []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With"}
)

// allowAllOrigins accepts any origin, method and request header. Preflight
// requests get their requested headers echoed back since handlers.CORS only
// matches header names literally.
func allowAllOrigins(next http.Handler) http.Handler {
	corsFor := func(headers []string) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods(corsMethods),
			handlers.AllowedHeaders(headers),
		)(next)
	}
	fixed := corsFor(corsHeaders)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested := r.Header.Get("Access-Control-Request-Headers")
		if r.Method != http.MethodOptions || requested == "" {
			fixed.ServeHTTP(w, r)
			return
		}
		headers := slices.Clone(corsHeaders)
		for _, header := range strings.Split(requested, ",") {
			if header = strings.TrimSpace(header); header != "" {
				headers = append(headers, header)
			}
		}
		corsFor(headers).ServeHTTP(w, r)
	})
}
