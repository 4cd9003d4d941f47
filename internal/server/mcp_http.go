package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// MCPConfig configures the MCP endpoint on the main router.
type MCPConfig struct {
	// AuthToken, when set, must be presented as a bearer token.
	AuthToken string

	// DisableStreaming answers with plain JSON instead of SSE streams.
	DisableStreaming bool
}

// NewMCPHandler returns the streamable HTTP transport for mcpSrv.
func NewMCPHandler(mcpSrv *mcpserver.MCPServer, config MCPConfig) http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
	}
	if config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	return mcpserver.NewStreamableHTTPServer(mcpSrv, opts...)
}

// RegisterMCPEndpoint mounts mcpSrv at /mcp for every method the transport
// understands (POST for messages, GET for the event stream, DELETE to end
// a session).
func RegisterMCPEndpoint(r gin.IRoutes, mcpSrv *mcpserver.MCPServer, config MCPConfig) {
	handler := gin.WrapH(NewMCPHandler(mcpSrv, config))
	auth := BearerAuth(config.AuthToken)

	r.POST(MCPEndpointPath, auth, handler)
	r.GET(MCPEndpointPath, auth, handler)
	r.DELETE(MCPEndpointPath, auth, handler)
}

// BearerAuth rejects requests that do not carry token in the Authorization
// header. An empty token disables the check.
func BearerAuth(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}

	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.Header("WWW-Authenticate", `Bearer realm="mcp"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}
		c.Next()
	}
}
