package handler

import (
	"context"
	"net/http"
	"time"

	"shopapp/internal/infra"
	"shopapp/internal/search"
	"shopapp/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// The database is required; Redis and the search index only degrade the
// service, so they are reported without failing the check.
func Health(db *gorm.DB, rdb *redis.Client, index search.Index, searchCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		var pending, deadLetters int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else {
				pending, _ = worker.NewIndexSyncQueue(rdb).Len(ctx)
				deadLetters, _ = worker.DLQLength(ctx, rdb, worker.QueueIndexPending)
			}
		}

		searchStatus := "connected"
		if index.Ping(ctx) != nil {
			searchStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":     status == http.StatusOK,
			"db":     dbStatus,
			"redis":  redisStatus,
			"search": searchStatus,
		}
		if rdb != nil {
			body["index_pending"] = pending
			body["index_dead_letters"] = deadLetters
		}
		if searchCB != nil {
			body["search_circuit"] = searchCB.State().String()
		}
		c.JSON(status, body)
	}
}
