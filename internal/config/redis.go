package config

// Redis backs the distributed rate limiter only.  When the server cannot be
// reached at startup NewRedisClient returns nil and the limiter degrades to a
// pass-through.

import (
    "context"
    "crypto/tls"
    "errors"
    "log/slog"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand (host/port win when both are set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
func NewRedisClient(ctx context.Context, logger *slog.Logger) *redis.Client {
    host := getenv("REDIS_HOST", "")
    port := getenv("REDIS_PORT", "")
    addr := getenv("REDIS_ADDR", "localhost:6379")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    var errs []error
    useTLS := boolVar("REDIS_TLS", false, &errs)
    db := intVar("REDIS_DB", 0, &errs)
    if err := errors.Join(errs...); err != nil {
        logger.WarnContext(ctx, "invalid redis configuration, rate limiting disabled", slog.Any("error", err))
        return nil
    }
    var tlsConf *tls.Config
    if useTLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  getenv("REDIS_PASSWORD", ""),
        DB:        db,
        TLSConfig: tlsConf,
    })
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        logger.WarnContext(ctx, "redis unavailable, rate limiting disabled",
            slog.String("addr", addr), slog.Any("error", err))
        _ = client.Close()
        return nil
    }
    return client
}
