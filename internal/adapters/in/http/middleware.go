package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	requestIDMaxLen = 64
)

// RequestID берёт X-Request-ID из запроса или генерирует новый
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		ctx.Set(requestIDKey, rid)
		ctx.Header(requestIDHeader, rid)

		ctx.Next()
	}
}

// AccessLogger пишет одну запись на запрос, уровень зависит от статуса ответа
func AccessLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		query := ctx.Request.URL.RawQuery

		ctx.Next()

		status := ctx.Writer.Status()
		fields := []zap.Field{
			zap.String("module", "HttpController"),
			zap.String("requestId", ctx.GetString(requestIDKey)),
			zap.Int("status", status),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", ctx.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= 500:
			logger.Error("http.request.failed", fields...)
		case status >= 400:
			logger.Warn("http.request.rejected", fields...)
		default:
			logger.Info("http.request.completed", fields...)
		}
	}
}
