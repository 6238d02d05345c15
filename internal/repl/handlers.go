package repl

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/tracing"
)

// EvalRequest is the body of POST /eval.
type EvalRequest struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) handleEval(c *gin.Context) {
	if c.ContentType() != binding.MIMEJSON {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "content type must be " + binding.MIMEJSON})
		return
	}

	var req EvalRequest
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value, err := s.eval.Eval(req.Code)
	if err != nil {
		s.logger.Debug("eval failed",
			zap.String("trace_id", tracing.FromContext(c.Request.Context())),
			zap.Error(err),
		)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": printable(value)})
}

func (s *Server) handleInstances(c *gin.Context) {
	instances := s.bridge.Instances()
	c.JSON(http.StatusOK, gin.H{
		"instances": instances,
		"count":     len(instances),
	})
}

func (s *Server) handleInstance(c *gin.Context) {
	ns := c.Param("ns")
	inst, ok := s.bridge.Lookup(ns)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live instance", "namespace": ns})
		return
	}
	c.JSON(http.StatusOK, inst.Info())
}

func (s *Server) handleReloadAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reloaded": s.bridge.ReloadAll()})
}

func (s *Server) handleReload(c *gin.Context) {
	ns := c.Param("ns")
	inst, ok := s.bridge.Lookup(ns)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live instance", "namespace": ns})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"namespace": ns,
		"scheduled": s.bridge.ReloadUI(inst),
	})
}

// printable returns v when it encodes as JSON and its string form otherwise.
// Exported functions and host objects do not encode.
func printable(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}
