package hxgrid

import (
	"errors"
	"net/http"

	"github.com/bdlm/log"
)

// Sentinel errors for grid requests.
var (
	ErrNotFound         = errors.New("hxgrid: action not found")
	ErrDecryptFailed    = errors.New("hxgrid: state decryption failed")
	ErrSignatureInvalid = errors.New("hxgrid: state signature invalid")
	ErrInvalidFormat    = errors.New("hxgrid: invalid state format")
	ErrSourceFailed     = errors.New("hxgrid: row source failed")
	ErrNoCodec          = errors.New("hxgrid: grid is not attached to a registry")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecryptionError checks if err came from a tampered or foreign state token.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsSourceError checks if err came from a RowSource.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceFailed)
}

// ErrorHandler writes the response for a failed grid request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler maps sentinel errors to status codes and logs the
// failure.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case IsNotFound(err):
		status = http.StatusNotFound
	case IsDecryptionError(err):
		status = http.StatusBadRequest
	case IsSourceError(err):
		status = http.StatusBadGateway
	}

	log.WithFields(log.Fields{
		"path":   r.URL.Path,
		"method": r.Method,
		"status": status,
	}).Warnf("grid request failed: %v", err)

	http.Error(w, http.StatusText(status), status)
}
