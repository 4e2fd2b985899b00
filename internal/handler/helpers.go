package handler

import (
	"strings"

	"facturation/internal/service"

	"github.com/gin-gonic/gin"
)

// clientIP extracts the requester address, preferring the first entry of
// X-Forwarded-For over the direct connection address so requests behind a
// proxy are attributed to the originating client.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return c.RemoteIP()
}

// requestMetadata builds the creation-event metadata from the incoming
// request. The method tag distinguishes programmatic API calls from web-form
// submissions relayed by the frontend.
func requestMetadata(c *gin.Context, method string) service.RequestMetadata {
	return service.RequestMetadata{
		IPAddress: clientIP(c),
		UserAgent: c.Request.UserAgent(),
		Method:    method,
	}
}
