package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// HealthHandler exposes liveness and readiness probes. Readiness reports
// every backing service individually so a degraded dependency is visible
// from the probe output alone.
type HealthHandler struct {
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	amqpConn    *amqp.Connection
}

func NewHealthHandler(dbPool *pgxpool.Pool, redisClient *redis.Client, amqpConn *amqp.Connection) *HealthHandler {
	return &HealthHandler{dbPool: dbPool, redisClient: redisClient, amqpConn: amqpConn}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	checks := []struct {
		name  string
		probe func() bool
	}{
		{"postgres", func() bool { return h.dbPool.Ping(ctx) == nil }},
		{"redis", func() bool { return h.redisClient.Ping(ctx).Err() == nil }},
		{"rabbitmq", func() bool { return !h.amqpConn.IsClosed() }},
	}

	detail := gin.H{}
	ready := true
	for _, check := range checks {
		if check.probe() {
			detail[check.name] = "connected"
			continue
		}
		detail[check.name] = "unavailable"
		ready = false
	}

	if !ready {
		detail["status"] = "error"
		c.JSON(http.StatusServiceUnavailable, detail)
		return
	}
	detail["status"] = "ok"
	c.JSON(http.StatusOK, detail)
}
