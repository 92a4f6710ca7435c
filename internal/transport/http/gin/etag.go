package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// writeJSONWithCache writes an already encoded JSON body with an ETag and
// Cache-Control. A matching If-None-Match is answered with 304.
func writeJSONWithCache(
	c *gin.Context,
	status int,
	body []byte,
	cacheControl string,
	weak bool,
) {
	sum := sha256.Sum256(body)
	tag := `"` + hex.EncodeToString(sum[:]) + `"`
	if weak {
		tag = "W/" + tag
	}
	inm := c.GetHeader("If-None-Match")
	c.Header("ETag", tag)
	if cacheControl != "" {
		c.Header("Cache-Control", cacheControl)
	}
	if inm == tag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(status, jsonContentType, body)
}
