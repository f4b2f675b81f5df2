package common

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireUUIDParam extracts a UUID route parameter or returns a 400 error.
func RequireUUIDParam(c echo.Context, param string) (uuid.UUID, error) {
	u, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return u, nil
}

// RequireMediaURL extracts and validates the url query parameter. Only
// absolute http(s) URLs are accepted.
func RequireMediaURL(c echo.Context) (string, error) {
	raw := strings.TrimSpace(c.QueryParam("url"))
	if raw == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "url must be an absolute http(s) URL")
	}
	return raw, nil
}
