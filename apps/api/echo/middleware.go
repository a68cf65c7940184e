package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// staffMiddleware only lets actors holding a staff role through
// (admin, adviser or secretary); students are read-only.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			if actor.IsAdmin() || actor.IsAdviser() || actor.IsSecretary() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
