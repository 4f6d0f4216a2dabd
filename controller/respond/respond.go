package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CodeSuccess = 0

	RequestIDHeader = "X-Request-ID"

	startTimeKey = "startTime"
	requestIDKey = "requestId"
)

// Response unified response envelope; Code is 0 on success, else the HTTP status
type Response struct {
	Code           int         `json:"code" example:"0"`
	Message        string      `json:"message" example:"success"`
	ProcessingTime int64       `json:"processingTime" example:"12"`
	RequestID      string      `json:"requestId,omitempty" example:"5d9d7c1e-8d5a-4e0f-9a57-0c1b8c2f2a11"`
	Data           interface{} `json:"data,omitempty"`
}

// TimingMiddleware records the request start and assigns a request id
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestID id assigned by TimingMiddleware
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func elapsed(c *gin.Context) int64 {
	v, ok := c.Get(startTimeKey)
	if !ok {
		return 0
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start).Milliseconds()
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:           code,
		Message:        message,
		ProcessingTime: elapsed(c),
		RequestID:      RequestID(c),
		Data:           data,
	})
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, CodeSuccess, "success", data)
}

// InvalidParam 400
func InvalidParam(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, http.StatusBadRequest, message, nil)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	write(c, http.StatusNotFound, http.StatusNotFound, message, nil)
}

// ServerError 500
func ServerError(c *gin.Context, message string) {
	write(c, http.StatusInternalServerError, http.StatusInternalServerError, message, nil)
}
