package identity

import (
	"net/http"
	"strings"

	apperrors "spacebook/pkg/errors"
	httputil "spacebook/pkg/http"
	"spacebook/pkg/logger"
)

// Authenticate resolves the bearer token into a requester on the request
// context. Safe methods may proceed anonymously; any other method without a
// valid token is answered with 401.
func Authenticate(issuer *TokenIssuer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if !safeMethod(r.Method) {
					reject(w, log, r, ErrMissingToken)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tok, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				reject(w, log, r, ErrMissingToken)
				return
			}
			requester, err := issuer.Verify(strings.TrimSpace(tok))
			if err != nil {
				reject(w, log, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRequester(r.Context(), requester)))
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, err error) {
	log.Warn("Authentication failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	w.Header().Set("WWW-Authenticate", `Bearer realm="spacebook"`)
	if writeErr := httputil.WriteError(w, apperrors.Unauthorized("A valid bearer token is required")); writeErr != nil {
		log.Error("failed to write error response", "middleware", "Authenticate", "error", writeErr)
	}
}
