package http

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// encoder matches encoding/json output: HTML escaped, map keys sorted.
var encoder = sonic.ConfigStd

func (h *Handlers) json(c *gin.Context, v interface{}) {
	body, err := encoder.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// textarea wraps the JSON record in a textarea element, which is how the
// browser's hidden-iframe upload reads it back.
func (h *Handlers) textarea(c *gin.Context, v interface{}) {
	body, err := encoder.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	out := make([]byte, 0, len(body)+len("<textarea></textarea>"))
	out = append(out, "<textarea>"...)
	out = append(out, body...)
	out = append(out, "</textarea>"...)
	c.Data(http.StatusOK, "text/html; charset=utf-8", out)
}
