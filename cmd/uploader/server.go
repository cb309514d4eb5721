package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// latestResponse is the JSON body served by GET /latest.
type latestResponse struct {
	UpdatedAt  *time.Time `json:"updated_at"`
	Stale      bool       `json:"stale"`
	Battery    *float64   `json:"battery_percent,omitempty"`
	Conversion *uint32    `json:"conversion_factor,omitempty"`
	CPM10s     *float64   `json:"cpm_10s,omitempty"`
	CPM60s     *float64   `json:"cpm_60s,omitempty"`
	CPM300s    *float64   `json:"cpm_300s,omitempty"`
	CPM3600s   *float64   `json:"cpm_3600s,omitempty"`
}

func newStatusServer(b *backend, staleAfter time.Duration) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/latest", func(c *gin.Context) {
		battery, conversion, cpm10, cpm60, cpm300, cpm3600, ok := b.snapshot()
		resp := latestResponse{Stale: b.stale(staleAfter)}

		if t := b.lastUpdateTime(); !t.IsZero() {
			resp.UpdatedAt = &t
		}
		resp.Battery = battery
		resp.Conversion = conversion
		if ok[0] {
			resp.CPM10s = &cpm10
		}
		if ok[1] {
			resp.CPM60s = &cpm60
		}
		if ok[2] {
			resp.CPM300s = &cpm300
		}
		if ok[3] {
			resp.CPM3600s = &cpm3600
		}

		c.JSON(http.StatusOK, resp)
	})

	return r
}
