package handler // declare the package name; contains HTTP handlers

import (
    "context"  // Pinger takes a context
    "net/http" // status codes

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health is the health-check endpoint used by load balancers and monitoring.
// It answers 200 "ok" while the database is reachable and 503 otherwise.  A
// nil db skips the check.
func (b Base) Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db != nil {
            ctx, cancel := b.dbContext(c)
            defer cancel()
            if err := db.PingContext(ctx); err != nil {
                b.Logger.WarnContext(ctx, "health check failed", "error", err)
                return fail(c, http.StatusServiceUnavailable, "Database unavailable")
            }
        }
        return c.String(http.StatusOK, "ok")
    }
}
