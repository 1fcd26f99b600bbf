package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxHeaderValue caps any single header value at 8KB.
const maxHeaderValue = 8192

var (
	// Logged, not blocked: the repos are parameterized, so these only matter
	// as a probe signal.
	sqlProbe = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1|1\s*=\s*1)`)

	// Blocked outright.
	scriptInjection = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)
)

// Sanitize rejects requests carrying injection attempts in the path, headers
// or query string. Blocked requests get a 400.
func Sanitize() echo.MiddlewareFunc {
	return SanitizeWithLogger(zerolog.Nop())
}

// SanitizeWithLogger is Sanitize with SQL-probe logging enabled.
func SanitizeWithLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if reason := checkPath(req.URL.Path, req.URL.RawPath); reason != "" {
				return reject(c, reason)
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValue {
						return reject(c, "header value exceeds maximum size: "+name)
					}
					if strings.ContainsAny(v, "\r\n") {
						return reject(c, "header injection detected: "+name)
					}
				}
			}

			for key, values := range req.URL.Query() {
				if hasNullByte(key) || scriptInjection.MatchString(key) {
					return reject(c, "malicious query parameter name")
				}
				for _, v := range values {
					if hasNullByte(v) {
						return reject(c, "null byte in query parameter")
					}
					if scriptInjection.MatchString(v) {
						return reject(c, "script injection in query parameter")
					}
					if sqlProbe.MatchString(v) {
						logger.Warn().
							Str("param", key).
							Str("path", req.URL.Path).
							Str("remote_ip", c.RealIP()).
							Msg("sql injection pattern in query parameter")
					}
				}
			}

			return next(c)
		}
	}
}

// checkPath looks for traversal and null bytes in both decoded and raw forms;
// encoded attacks hide in RawPath.
func checkPath(path, rawPath string) string {
	if rawPath == "" {
		rawPath = path
	}
	for _, s := range []string{path, rawPath} {
		lower := strings.ToLower(s)
		if strings.Contains(s, "..") || strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e") {
			return "path traversal detected"
		}
		if hasNullByte(s) {
			return "null byte in path"
		}
	}
	return ""
}

func hasNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}

func reject(c echo.Context, reason string) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": reason})
}

// SanitizeString strips null bytes and control characters (keeping \n, \r and
// \t) and trims surrounding whitespace. Handlers use it on free-text fields
// before persisting.
func SanitizeString(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '\x00' {
			continue
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
