package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 3 * time.Second

type healthStatus struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health pings Postgres and Redis. Returns 503 if either backend is down so
// load balancers can drain the instance.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		st := healthStatus{Database: "up", Redis: "up"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			st.Database = "down"
		}
		if rdb.Ping(ctx).Err() != nil {
			st.Redis = "down"
		}

		st.OK = st.Database == "up" && st.Redis == "up"
		code := http.StatusOK
		if !st.OK {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, st)
	}
}
