package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// uploadPath is the one endpoint allowed a bigger body: profile images dwarf
// every JSON payload this API accepts.
const uploadPath = "/api/v1/images/upload"

// BodyLimit caps request body sizes. Most endpoints get defaultLimit; POST to
// the image upload endpoint gets uploadLimit. Limits are human-readable
// ("1M", "512K") or plain byte counts; oversized requests get 413.
func BodyLimit(defaultLimit, uploadLimit string) echo.MiddlewareFunc {
	defaultBytes := parseSize(defaultLimit)
	uploadBytes := parseSize(uploadLimit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			limit := defaultBytes
			if req.Method == http.MethodPost && req.URL.Path == uploadPath {
				limit = uploadBytes
			}

			// Declared length lets us reject before reading anything.
			if req.ContentLength > limit {
				return tooLarge(c, limit)
			}

			// Still cap the actual read: Content-Length can lie or be absent
			// with chunked encoding.
			req.Body = &cappedBody{inner: req.Body, left: limit}
			return next(c)
		}
	}
}

// cappedBody errors with 413 once more than left bytes have been read.
type cappedBody struct {
	inner   io.ReadCloser
	left    int64
	tripped bool
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.tripped {
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	// Read one byte past the cap so overflow is detectable.
	if max := b.left + 1; int64(len(p)) > max {
		p = p[:max]
	}
	n, err := b.inner.Read(p)
	b.left -= int64(n)
	if b.left < 0 {
		b.tripped = true
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return n, err
}

func (b *cappedBody) Close() error { return b.inner.Close() }

func tooLarge(c echo.Context, limit int64) error {
	return c.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{
		"message": fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", limit),
	})
}

// parseSize converts "1M"/"512K"/"2G"/"4096" to bytes, defaulting to 1MB on
// anything unparseable.
func parseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))

	var scale int64 = 1
	switch {
	case strings.HasSuffix(s, "G"), strings.HasSuffix(s, "GB"):
		scale = 1 << 30
		s = strings.TrimRight(s, "GB")
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "MB"):
		scale = 1 << 20
		s = strings.TrimRight(s, "MB")
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "KB"):
		scale = 1 << 10
		s = strings.TrimRight(s, "KB")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 1 << 20
	}
	return n * scale
}
