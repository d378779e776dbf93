package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/events"
	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/validate"
)

// Response messages shared by every handler.
const (
	msgBadParameter       = "Bad parameter"
	msgNotFound           = "Not found"
	msgInternal           = "Internal server error"
	msgConflict           = "Account already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "No token, authorization denied"
)

// Base holds what every resource handler needs besides its repositories.
type Base struct {
	Timeout time.Duration
	Events  events.Publisher
	Logger  *slog.Logger
}

// NewBase fills in defaults for a zero timeout, nil publisher or nil logger.
func NewBase(timeout time.Duration, pub events.Publisher, logger *slog.Logger) Base {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Base{Timeout: timeout, Events: pub, Logger: logger}
}

// dbContext bounds the store calls of one request.
func (b Base) dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), b.Timeout)
}

// publishTimeout caps how long a write request waits on the event sink.
const publishTimeout = 3 * time.Second

// publish delivers ev without letting a broker problem affect the response.
func (b Base) publish(c echo.Context, ev events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	_ = b.Events.Publish(ctx, ev)
}

// internalError logs err and answers 500.
func (b Base) internalError(c echo.Context, op string, err error) error {
	b.Logger.ErrorContext(c.Request().Context(), op+" failed", slog.Any("error", err))
	return fail(c, http.StatusInternalServerError, msgInternal)
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"msg": msg})
}

// badParameter answers 400; detail, when set, names what was wrong.
func badParameter(c echo.Context, detail string) error {
	body := echo.Map{"msg": msgBadParameter}
	if detail != "" {
		body["error"] = detail
	}
	return c.JSON(http.StatusBadRequest, body)
}

// caller returns the identity JWTAuth attached to the request.
func caller(c echo.Context) (uint64, bool) {
	return middleware.IdentityFrom(c)
}

// idParam parses the :id path parameter as a positive integer.
func idParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

// bindBody checks the request body against schema and decodes it into dst.
// A *validate.Error means the client sent a bad body.
func bindBody(c echo.Context, schema string, dst any) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return &validate.Error{Message: "unreadable body: " + err.Error()}
	}
	if err := validate.Body(schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &validate.Error{Message: "malformed JSON: " + err.Error()}
	}
	return nil
}

// bindFailed turns a bindBody error into a response.
func (b Base) bindFailed(c echo.Context, err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return badParameter(c, verr.Error())
	}
	return b.internalError(c, "validate body", err)
}

// ErrorHandler renders errors that escaped a handler, and echo's own 404, 405
// and 413, as JSON {"msg": ...}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := msgInternal

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch {
			case status == http.StatusNotFound:
				msg = msgNotFound
			case status == http.StatusUnauthorized:
				msg = msgUnauthorized
			case status >= http.StatusInternalServerError:
				msg = msgInternal
			default:
				msg = fmt.Sprint(he.Message)
			}
		}
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "unhandled error",
				slog.String("uri", c.Request().RequestURI), slog.Any("error", err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"msg": msg})
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", slog.Any("error", err))
		}
	}
}
