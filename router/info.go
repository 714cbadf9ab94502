package router

import (
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/threatguard/shared"
)

// BuildInfo is filled at build time via ldflags.
type BuildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
}

// RuntimeInfo aggregates Go runtime diagnostics
type RuntimeInfo struct {
	GoVersion     string `json:"goVersion,omitempty"`
	NumGoroutines int    `json:"numGoroutines,omitempty"`
}

// PoolInfo exposes non-sensitive pool statistics taken from pgxpool.Stat().
type PoolInfo struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}

type InfoResponse struct {
	Build   BuildInfo   `json:"build"`
	Runtime RuntimeInfo `json:"runtime"`
	Pool    *PoolInfo   `json:"pool,omitempty"`
	Time    time.Time   `json:"time"`
}

var Build BuildInfo

type InfoRouter struct{}

func NewInfoRouter(apiV1Router APIV1Router, pool *pgxpool.Pool) InfoRouter {
	apiV1Router.GET("/info/", func(c shared.Context) error {
		resp := InfoResponse{
			Build: Build,
			Runtime: RuntimeInfo{
				GoVersion:     runtime.Version(),
				NumGoroutines: runtime.NumGoroutine(),
			},
			Time: time.Now(),
		}
		if pool != nil {
			stat := pool.Stat()
			resp.Pool = &PoolInfo{
				TotalConns:    stat.TotalConns(),
				IdleConns:     stat.IdleConns(),
				AcquiredConns: stat.AcquiredConns(),
				MaxConns:      stat.MaxConns(),
			}
		}
		return c.JSON(200, resp)
	})
	return InfoRouter{}
}
