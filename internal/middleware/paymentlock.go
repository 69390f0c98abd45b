package middleware

import (
	"errors"
	"net/http"

	domainErrors "github.com/cassiomorais/gateway/internal/domain/errors"
	redisinfra "github.com/cassiomorais/gateway/internal/infrastructure/redis"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PaymentLock serializes gateway operations per payment. The lock is
// held for the duration of the request; a second request against the
// same payment gets 409 instead of racing the first one at the provider.
func PaymentLock(locker *redisinfra.PaymentLocker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paymentID := chi.URLParam(r, "id")
			if paymentID == "" {
				next.ServeHTTP(w, r)
				return
			}

			lock, err := locker.Lock(r.Context(), paymentID)
			if err != nil {
				status := http.StatusInternalServerError
				code := "internal_error"
				msg := "internal server error"
				if errors.Is(err, domainErrors.ErrLockAcquisitionFailed) {
					status = http.StatusConflict
					code = "payment_locked"
					msg = "another operation is running on this payment, please retry"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				w.Write([]byte(`{"error":"` + msg + `","code":"` + code + `"}`))
				return
			}
			defer func() {
				if err := lock.Release(r.Context()); err != nil {
					log.Warn().Err(err).Str("payment_id", paymentID).Msg("failed to release payment lock")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
