package bot

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const TokenHeader = "X-Forumbot-Token"

// https://twin.sh/articles/35/how-to-add-colors-to-your-console-terminal-output-in-go
var (
	reset  = "\033[0m"
	bold   = "\033[1m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// RequireToken rejects requests without the shared secret. An empty token disables the check.
func RequireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got := c.GetHeader(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorEnvelope{
				Error: APIError{Message: "invalid token", Code: "unauthorized"},
			})
			return
		}

		c.Next()
	}
}

// RequestLogger logs every request with a level depending on the status code.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := log.Debug()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("hook", c.Param("hook")+c.Param("request")).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("HTTP request")
	}
}

// PrintHooks writes a colored line per hook call to stdout.
func PrintHooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fmt.Println(formatHook(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), start))
	}
}

func formatHook(method, path string, status int, took time.Duration, at time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s[%v]%s", cyan, at.Format("15:04:05"), reset))
	sb.WriteString(fmt.Sprintf(" %s%s%s %s", bold, method, reset, path))
	sb.WriteString(fmt.Sprintf("%s >>> %s", cyan, reset))

	color := green
	switch {
	case status >= 500:
		color = red
	case status >= 400:
		color = yellow
	}
	sb.WriteString(fmt.Sprintf("%s%d%s (%s)", color, status, reset, took.Round(time.Millisecond)))

	return sb.String()
}
