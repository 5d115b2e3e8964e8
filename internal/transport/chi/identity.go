package chi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/intentsearch/internal/logger"
)

// Identity headers. Both are echoed back so a client that sent none can adopt the generated ids.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderDeviceID  = "X-Device-ID"
)

const maxIDLength = 128

// Identity names the browser tab (session) and the device behind a request.
type Identity struct {
	Session string
	Device  string
}

type identityKey struct{}

// IdentityMiddleware resolves the session and device ids from headers, falling
// back to the session_id / device_id query parameters (websocket clients cannot
// set headers) and finally to fresh UUIDs.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			Session: pickID(r, HeaderSessionID, "session_id"),
			Device:  pickID(r, HeaderDeviceID, "device_id"),
		}
		w.Header().Set(HeaderSessionID, id.Session)
		w.Header().Set(HeaderDeviceID, id.Device)

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		ctx = logpkg.WithFields(ctx,
			zap.String("session_id", id.Session),
			zap.String("device_id", id.Device),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the identity resolved by IdentityMiddleware.
func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{}
}

func pickID(r *http.Request, header, param string) string {
	for _, v := range []string{r.Header.Get(header), r.URL.Query().Get(param)} {
		if v != "" && len(v) <= maxIDLength {
			return v
		}
	}
	return uuid.NewString()
}
