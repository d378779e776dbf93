package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"   // errors distinguishes missing from invalid tokens
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for scheme checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/todo-api/internal/auth" // token errors shared with the issuer
)

// AltTokenHeader is accepted when no Authorization header is sent.
const AltTokenHeader = "X-Access-Token"

// Response messages for rejected requests.
const (
    msgMissingToken = "No token, authorization denied"
    msgInvalidToken = "Token is not valid"
)

// TokenVerifier checks a raw session token and returns the identity it
// belongs to.  *auth.Issuer satisfies it.
type TokenVerifier interface {
    Verify(raw string) (uint64, error)
}

// JWTAuth returns an Echo middleware that gates a route on a valid session
// token.  A request without a token is rejected with 401 and
// "No token, authorization denied"; a token that fails verification is
// rejected with 401 and "Token is not valid".  On success the identity is
// stored under the "user_id" context key before the handler runs.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, present := extractToken(c.Request())
            if !present {
                return c.JSON(http.StatusUnauthorized, echo.Map{"msg": msgMissingToken})
            }
            id, err := v.Verify(raw)
            if err != nil {
                if errors.Is(err, auth.ErrMissingToken) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"msg": msgMissingToken})
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"msg": msgInvalidToken})
            }
            setIdentity(c, id)
            return next(c)
        }
    }
}

// extractToken reads "Authorization: Bearer <token>" (scheme is
// case-insensitive), falling back to the X-Access-Token header.  present is
// false when neither header carries a token.  An Authorization header
// with another scheme yields a token that can never verify.
func extractToken(r *http.Request) (raw string, present bool) {
    if h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization)); h != "" {
        scheme, tok, found := strings.Cut(h, " ")
        if !found {
            if strings.EqualFold(h, "Bearer") {
                return "", false
            }
            return h, true
        }
        tok = strings.TrimSpace(tok)
        if !strings.EqualFold(scheme, "Bearer") {
            return h, true
        }
        return tok, tok != ""
    }
    if alt := strings.TrimSpace(r.Header.Get(AltTokenHeader)); alt != "" {
        return alt, true
    }
    return "", false
}
