package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-analytics/internal/auth"
	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/observability"
	"github.com/spec-kit/ops-analytics/internal/repository"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.String("path", c.Path()),
						zap.Error(domainErr),
					)
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// ActivityTracker records each authenticated caller in the activity store so
// the active users KPI can count them. Store failures are logged and never
// fail the request.
func ActivityTracker(activity repository.ActivityRepository, logger *zap.Logger, now func() time.Time) fiber.Handler {
	if now == nil {
		now = time.Now
	}
	return func(c *fiber.Ctx) error {
		if identity, ok := auth.IdentityFromContext(c); ok {
			key := ActivityKey(identity.Role, identity.SubjectID)
			if err := activity.RecordActivity(c.UserContext(), key, now()); err != nil {
				logger.Warn("record activity failed",
					zap.String("request_id", observability.RequestID(c)),
					zap.String("subject", key),
					zap.Error(err),
				)
			}
		}
		return c.Next()
	}
}

// ActivityKey identifies a caller in the activity store.
func ActivityKey(role domain.Role, subjectID string) string {
	if subjectID == "" {
		return string(role)
	}
	return string(role) + ":" + subjectID
}
