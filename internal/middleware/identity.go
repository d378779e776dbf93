package middleware

// identity.go holds the context accessors for the authenticated identity set
// by JWTAuth.

import (
    "context"
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key under which JWTAuth stores the identity.
const UserIDKey = "user_id"

type identityKey struct{}

func setIdentity(c echo.Context, id uint64) {
    c.Set(UserIDKey, id)
    req := c.Request()
    c.SetRequest(req.WithContext(context.WithValue(req.Context(), identityKey{}, id)))
}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(c echo.Context) (uint64, bool) {
    id, ok := c.Get(UserIDKey).(uint64)
    return id, ok && id != 0
}

// IdentityFromContext is the context.Context counterpart of IdentityFrom,
// for code that only sees the request context.
func IdentityFromContext(ctx context.Context) (uint64, bool) {
    id, ok := ctx.Value(identityKey{}).(uint64)
    return id, ok && id != 0
}

// userID renders the identity for keys and logs; "anon" when unauthenticated.
func userID(c echo.Context) string {
    if id, ok := IdentityFrom(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
