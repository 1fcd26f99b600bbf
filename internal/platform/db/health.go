package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// poolStatus is the JSON shape of the /health/db response.
type poolStatus struct {
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	PingMillis    int64  `json:"ping_ms"`
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	MaxConns      int32  `json:"max_conns"`
}

// HealthHandler reports database reachability plus pool occupancy. It answers
// 503 when the ping fails so load balancers can take the instance out of
// rotation.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		pingErr := pool.Ping(ctx)

		stat := pool.Stat()
		status := poolStatus{
			Status:        "healthy",
			PingMillis:    time.Since(start).Milliseconds(),
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
		}

		if pingErr != nil {
			status.Status = "unhealthy"
			status.Error = pingErr.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	}
}
