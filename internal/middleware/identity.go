package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mineduel/mineduel-server/internal/config"
)

type CtxKey int

const CtxIdentity CtxKey = iota

// Identity resolves the per-device identity token for every request.
// There is no login: a request without a valid signed cookie gets a fresh
// random token minted and set on the spot, so every caller always acts
// under exactly one stable identity.
func Identity(log *logrus.Logger, cookies *config.Cookies, jwt *config.JWT) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ""
			if token, ok := cookies.Identity(r); ok {
				id, err := jwt.ParseDeviceID(token)
				if err != nil {
					log.WithError(err).Debug("discarding invalid identity token")
				} else {
					deviceID = id
				}
			}

			if deviceID == "" {
				id, err := mintDeviceID()
				if err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					log.WithError(err).Error("unable to mint device id")
					return
				}
				token, err := jwt.Sign(id)
				if err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					log.WithError(err).Error("unable to sign device token")
					return
				}
				cookies.SetIdentity(w, token, jwt.TokenLifetime())
				deviceID = id
			}

			ctx := context.WithValue(r.Context(), CtxIdentity, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the acting device identity attached by Identity.
func IdentityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxIdentity).(string)
	return id, ok && id != ""
}

func mintDeviceID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
