package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"accountsvc/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Credentials    *service.CredentialsService
	Reset          *service.PasswordResetService
	RequestTimeout time.Duration
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:   logger,
		isProd:   opts.IsProd,
		dbPing:   opts.DBPing,
		credsSvc: opts.Credentials,
		resetSvc: opts.Reset,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.credsSvc == nil {
		mux.HandleFunc("POST /v1/auth/register", handleNotImplemented)
		mux.HandleFunc("POST /v1/auth/login", handleNotImplemented)
	} else {
		mux.HandleFunc("POST /v1/auth/register", api.handleAuthRegister)
		mux.HandleFunc("POST /v1/auth/login", api.handleAuthLogin)
	}

	if api.resetSvc == nil {
		mux.HandleFunc("POST /v1/auth/forgot-password", handleNotImplemented)
		mux.HandleFunc("GET /v1/auth/reset-tokens/{token}", handleNotImplemented)
		mux.HandleFunc("POST /v1/auth/reset-password", handleNotImplemented)
	} else {
		mux.HandleFunc("POST /v1/auth/forgot-password", api.handleAuthForgot)
		mux.HandleFunc("GET /v1/auth/reset-tokens/{token}", api.handleAuthValidateToken)
		mux.HandleFunc("POST /v1/auth/reset-password", api.handleAuthReset)
	}

	var h http.Handler = mux
	if opts.RequestTimeout > 0 {
		h = RequestTimeout(opts.RequestTimeout)(h)
	}
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	credsSvc *service.CredentialsService
	resetSvc *service.PasswordResetService
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
