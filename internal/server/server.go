package server

import (
	"archive/zip"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ebaad11/drp-jl-cut-api/internal/pipeline"
	"github.com/ebaad11/drp-jl-cut-api/internal/ports/adapters/drpzip"
	"github.com/ebaad11/drp-jl-cut-api/internal/usecase"
)

const defaultMaxUpload = 50 << 20

type Config struct {
	// MaxUploadBytes caps the accepted .drp size; <= 0 uses the default.
	MaxUploadBytes int64
	CacheDir       string
	Logf           func(format string, args ...any)
}

type Server struct {
	cfg    Config
	router *gin.Engine
}

func New(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = ".cache"
	}
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, router: r}
	r.GET("/", s.rootHandler)
	r.GET("/health", s.healthHandler)
	api := r.Group("/api")
	{
		api.POST("/process", s.processHandler)
	}
	return s
}

func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) Run(addr string) error {
	s.cfg.Logf("listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":   "drp-jl-cut-api",
		"status": "operational",
		"endpoints": gin.H{
			"process": "/api/process",
			"health":  "/health",
		},
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// processHandler accepts a multipart upload (file, cut_type, offset,
// optional dry_run) and responds with the processed archive, or the JSON
// report for dry runs.
func (s *Server) processHandler(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file field is required")
		return
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file size %d exceeds maximum %d bytes", fh.Size, s.cfg.MaxUploadBytes),
		})
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".drp") {
		badRequest(c, "only .drp files are accepted")
		return
	}

	mode := strings.ToUpper(c.PostForm("cut_type"))
	if mode != "J" && mode != "L" {
		badRequest(c, "cut_type must be 'J' or 'L'")
		return
	}
	offset, err := strconv.Atoi(c.PostForm("offset"))
	if err != nil || offset < 1 || offset > pipeline.MaxOffset {
		badRequest(c, fmt.Sprintf("offset must be an integer between 1 and %d", pipeline.MaxOffset))
		return
	}
	dryRun := c.PostForm("dry_run") == "true"

	scratch := filepath.Join(s.cfg.CacheDir, "uploads", uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		internalError(c, err)
		return
	}
	defer os.RemoveAll(scratch)

	inPath := filepath.Join(scratch, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, inPath); err != nil {
		internalError(c, err)
		return
	}

	s.cfg.Logf("processing %s: mode=%s offset=%d dry_run=%v", fh.Filename, mode, offset, dryRun)
	res, err := pipeline.Run(c.Request.Context(), pipeline.Config{
		InputDRP: inPath,
		OutDir:   scratch,
		Offset:   offset,
		Mode:     mode,
		DryRun:   dryRun,
		CacheDir: filepath.Join(scratch, "cache"),
		Logf:     s.cfg.Logf,
	})
	if err != nil {
		s.respondRunError(c, err, &res)
		return
	}

	summary := res.Report.Summary
	if dryRun {
		c.JSON(http.StatusOK, res.Report)
		return
	}
	if res.OutPath == "" {
		if summary.Boundaries == 0 {
			badRequest(c, "no cut boundaries found; clips must have aligned audio and video")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  fmt.Sprintf("could not apply %s-cuts; try a smaller offset or a different cut type", mode),
			"report": res.Report,
		})
		return
	}

	c.Header("X-Cuts-Applied", strconv.Itoa(summary.Applied))
	c.Header("X-Total-Boundaries", strconv.Itoa(summary.Boundaries))
	c.Header("X-Cut-Type", mode)
	c.Header("X-Offset", strconv.Itoa(offset))
	c.FileAttachment(res.OutPath, filepath.Base(res.OutPath))
}

func (s *Server) respondRunError(c *gin.Context, err error, res *pipeline.Result) {
	switch {
	case errors.Is(err, pipeline.ErrSuspectRun):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "project contains inconsistencies; no output written",
			"report": res.Report,
		})
	case errors.Is(err, usecase.ErrNoTimelines),
		errors.Is(err, drpzip.ErrInvalidStructure),
		errors.Is(err, drpzip.ErrUnsafeArchive),
		errors.Is(err, drpzip.ErrTooLarge),
		errors.Is(err, zip.ErrFormat):
		badRequest(c, err.Error())
	default:
		s.cfg.Logf("process error: %v", err)
		internalError(c, err)
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
