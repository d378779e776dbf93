package config // package config loads application configuration from environment variables

import (
    "errors"  // errors joins every missing or invalid key into one error
    "fmt"     // fmt formats per-key errors
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings normalizes driver names
    "time"    // time parses durations such as TOKEN_TTL

    "github.com/joho/godotenv" // godotenv loads an optional .env file into the environment
)

// Supported values for DB_DRIVER.
const (
    DriverMySQL  = "mysql"
    DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Durations are parsed with time.ParseDuration.
type Config struct {
    Env        string        // application environment (e.g. "dev", "prod")
    Port       string        // HTTP port to listen on
    DBDriver   string        // mysql or sqlite
    DBUser     string        // database username
    DBPass     string        // database password (optional)
    DBHost     string        // database host address
    DBPort     string        // database port number
    DBName     string        // database name
    DBPath     string        // sqlite database file
    DBTimeout  time.Duration // upper bound on each store call
    JWTSecret  string        // secret used to sign JWTs
    TokenTTL   time.Duration // session token lifetime
    BcryptCost int           // bcrypt cost for password hashing
    LogLevel   string        // debug, info, warn or error
    TrustProxy bool          // take the client IP from X-Forwarded-For sent by a private-network proxy
}

// Load reads an optional .env file and then builds a Config from the
// environment.  Every missing or malformed variable is reported in the
// returned error, so a misconfigured deployment fails once with the full list.
func Load() (Config, error) {
    // A missing .env is the normal case outside local development.
    _ = godotenv.Load()

    var errs []error
    cfg := Config{
        Env:        getenv("APP_ENV", "dev"),
        Port:       getenv("APP_PORT", "3000"),
        DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
        DBUser:     os.Getenv("DB_USER"),
        DBPass:     os.Getenv("DB_PASS"), // empty allowed
        DBHost:     getenv("DB_HOST", "localhost"),
        DBPort:     getenv("DB_PORT", "3306"),
        DBName:     os.Getenv("DB_NAME"),
        DBPath:     getenv("DB_PATH", "todo.sqlite"),
        DBTimeout:  durationVar("DB_TIMEOUT", 5*time.Second, &errs),
        JWTSecret:  required("JWT_SECRET", &errs),
        TokenTTL:   durationVar("TOKEN_TTL", 24*time.Hour, &errs),
        BcryptCost: intVar("BCRYPT_COST", 10, &errs),
        LogLevel:   strings.ToLower(getenv("LOG_LEVEL", "info")),
        TrustProxy: boolVar("TRUST_PROXY", false, &errs),
    }

    switch cfg.DBDriver {
    case DriverMySQL:
        if cfg.DBUser == "" {
            errs = append(errs, errors.New("missing required env var: DB_USER"))
        }
        if cfg.DBName == "" {
            errs = append(errs, errors.New("missing required env var: DB_NAME"))
        }
    case DriverSQLite:
    default:
        errs = append(errs, fmt.Errorf("unsupported DB_DRIVER: %q", cfg.DBDriver))
    }
    if cfg.TokenTTL <= 0 {
        errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL))
    }
    if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
        errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost))
    }
    return cfg, errors.Join(errs...)
}

// required retrieves the value of a required environment variable and
// records an error when it is unset or empty.
func required(key string, errs *[]error) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        *errs = append(*errs, fmt.Errorf("missing required env var: %s", key))
    }
    return v
}

// intVar is like getenv but converts the value into an integer.
func intVar(key string, def int, errs *[]error) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        *errs = append(*errs, fmt.Errorf("invalid int for %s: %q", key, s))
        return def
    }
    return n
}

// boolVar accepts strconv.ParseBool values as well as yes/no and on/off.
func boolVar(key string, def bool, errs *[]error) bool {
    s := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
    switch s {
    case "":
        return def
    case "yes", "on":
        return true
    case "no", "off":
        return false
    }
    b, err := strconv.ParseBool(s)
    if err != nil {
        *errs = append(*errs, fmt.Errorf("invalid bool for %s: %q", key, s))
        return def
    }
    return b
}

func durationVar(key string, def time.Duration, errs *[]error) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        *errs = append(*errs, fmt.Errorf("invalid duration for %s: %q", key, s))
        return def
    }
    return d
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}
