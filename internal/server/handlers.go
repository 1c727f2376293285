package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reformtrack/align/dataset"
	"github.com/reformtrack/align/engine"
	"github.com/reformtrack/align/export"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string        `json:"status"`
	Rows      int           `json:"rows"`
	Error     string        `json:"error,omitempty"`
	PNGExport export.Status `json:"pngExport"`
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok", PNGExport: s.png.Status()}
	ds, err := s.source.Load(c.Request.Context())
	if err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.Rows = ds.Len()
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDefaultSelection(c *gin.Context) {
	ds, ok := s.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.DefaultSelectionInput(engine.YearOptions(ds.View()), s.cfg.Chapters))
}

func (s *Server) handleControls(c *gin.Context) {
	ds, sel, ok := s.selection(c)
	if !ok {
		return
	}
	s.respond(c, http.StatusOK, engine.BuildControls(ds.View(), sel, s.cfg.Chapters))
}

func (s *Server) handleRender(c *gin.Context) {
	result, ok := s.execute(c)
	if !ok {
		return
	}
	s.respond(c, http.StatusOK, result)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	result, ok := s.executeChart(c)
	if !ok {
		return
	}
	data, err := export.CSV(result.Rows)
	if err != nil {
		s.internalError(c, err)
		return
	}
	attach(c, export.CSVFileName, "text/csv; charset=utf-8", data)
}

func (s *Server) handleExportSVG(c *gin.Context) {
	result, ok := s.executeChart(c)
	if !ok {
		return
	}
	data, err := export.SVG(result.ChartConfig, export.SVGOptions{
		Width:  s.cfg.Export.Width,
		Height: s.cfg.Export.Height,
	})
	if err != nil {
		s.internalError(c, err)
		return
	}
	attach(c, export.SVGFileName, "image/svg+xml", data)
}

func (s *Server) handleExportPNG(c *gin.Context) {
	result, ok := s.executeChart(c)
	if !ok {
		return
	}
	data, err := s.png.PNG(c.Request.Context(), result.ChartConfig)
	var unavailable *export.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": unavailable.Error(), "hint": unavailable.Hint})
		return
	case err != nil:
		s.internalError(c, err)
		return
	}
	attach(c, export.PNGFileName, "image/png", data)
}

func (s *Server) handlePreview(c *gin.Context) {
	if !s.cfg.Dev.Enabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	ds, ok := s.dataset(c)
	if !ok {
		return
	}
	s.respond(c, http.StatusOK, engine.BuildPreviewTable(ds.View(), s.cfg.Dev.PreviewRows))
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) dataset(c *gin.Context) (*dataset.Dataset, bool) {
	ds, err := s.source.Load(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return ds, true
}

func (s *Server) selection(c *gin.Context) (*dataset.Dataset, engine.Selection, bool) {
	var in engine.SelectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, engine.Selection{}, false
	}
	ds, ok := s.dataset(c)
	if !ok {
		return nil, engine.Selection{}, false
	}
	sel, err := engine.NewSelection(in, s.cfg.Chapters, engine.YearOptions(ds.View()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, engine.Selection{}, false
	}
	return ds, sel, true
}

func (s *Server) execute(c *gin.Context) (*engine.Result, bool) {
	ds, sel, ok := s.selection(c)
	if !ok {
		return nil, false
	}
	result, err := engine.Execute(sel, ds.View(),
		engine.WithLogger(s.logger),
		engine.WithReliabilityThreshold(s.cfg.ReliabilityThreshold),
	)
	if err != nil {
		s.internalError(c, err)
		return nil, false
	}
	return result, true
}

// executeChart is execute for export endpoints, which have nothing to
// offer for an empty result.
func (s *Server) executeChart(c *gin.Context) (*engine.Result, bool) {
	result, ok := s.execute(c)
	if !ok {
		return nil, false
	}
	if result.Type == engine.ResultEmpty {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": result.Reply})
		return nil, false
	}
	return result, true
}

// respond encodes v before the status line is written; a payload that
// cannot be encoded is reported as a 500.
func (s *Server) respond(c *gin.Context, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.internalError(c, fmt.Errorf("encode response: %w", err))
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func attach(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, data)
}
