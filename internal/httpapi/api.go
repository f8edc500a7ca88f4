package httpapi

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-manager/internal/account"
	"quiz-manager/internal/auth"
	"quiz-manager/internal/pdfconv"
	"quiz-manager/internal/quiz"
)

const defaultMaxUploadBytes = 32 << 20

type Options struct {
	StaticDir      string
	MaxUploadBytes int64
	Converter      pdfconv.Converter
}

type API struct {
	accounts  *account.Service
	quizzes   *quiz.Service
	tokens    *auth.TokenService
	converter pdfconv.Converter
	validate  *validator.Validate

	staticDir      string
	maxUploadBytes int64
}

func NewAPI(accounts *account.Service, quizzes *quiz.Service, tokens *auth.TokenService, opts Options) *API {
	if opts.StaticDir == "" {
		opts.StaticDir = "static"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.Converter == nil {
		opts.Converter = pdfconv.NewPDFConverter(opts.StaticDir)
	}

	return &API{
		accounts:       accounts,
		quizzes:        quizzes,
		tokens:         tokens,
		converter:      opts.Converter,
		validate:       newValidator(),
		staticDir:      opts.StaticDir,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return validate
}
