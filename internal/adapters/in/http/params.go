package http

import (
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// pathID reads a UUID path parameter. On failure the 400 response is already written
// and the returned error must be passed back to echo.
func pathID(c echo.Context, name string) (kernel.UUID, bool, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, false, badRequest(c, "Invalid "+name+": "+err.Error())
	}
	return id, true, nil
}

// bind decodes the request body. On failure the 400 response is already written.
func bind(c echo.Context, body any) (bool, error) {
	if err := c.Bind(body); err != nil {
		return false, badRequest(c, "Invalid request body")
	}
	return true, nil
}
