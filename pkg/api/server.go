// Package api provides the REST API server for dtx2ssc
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/james-see/dtx2ssc/internal/config"
	"github.com/james-see/dtx2ssc/pkg/chart"
	"github.com/james-see/dtx2ssc/pkg/converter"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title DTX2SSC API
// @version 1.0
// @description API for converting DTXMania drum charts to SSC note data
// @host localhost:8080
// @BasePath /api/v1

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// StartServer initializes error tracking and serves the API on cfg.Port
func StartServer(cfg *config.Config) error {
	if cfg.SentryEnabled() {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     cfg.Release,
		})
		if err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			log.Printf("Sentry initialized (environment: %s)", cfg.Environment)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	return NewRouter(cfg).Run(":" + cfg.Port)
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware())
	if cfg.SentryEnabled() {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	h := &handlers{cfg: cfg}

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/dtx2ssc", h.handleDTXToSSC)
		v1.POST("/convert/dtx2midi", h.handleDTXToMIDI)
		v1.POST("/inspect", h.handleInspect)
		v1.GET("/formats", listFormats)
		v1.GET("/lanes", listLanes)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type handlers struct {
	cfg *config.Config
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dtx2ssc",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the supported input/output formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{string(converter.FormatDTX), string(converter.FormatSSC), string(converter.FormatMIDI)},
		"conversions": converter.GetSupportedConversions(),
	})
}

type laneInfo struct {
	Column   int      `json:"column"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Channels []string `json:"channels"`
	MIDINote uint8    `json:"midi_note"`
}

// listLanes godoc
// @Summary List SSC lanes
// @Description Returns the gddm-new columns and the DTX channels mapped onto them
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]laneInfo
// @Router /api/v1/lanes [get]
func listLanes(c *gin.Context) {
	channels := converter.LaneChannels()
	lanes := make([]laneInfo, 0, chart.NumLanes)
	for _, lane := range chart.Lanes() {
		lanes = append(lanes, laneInfo{
			Column:   int(lane),
			Code:     lane.String(),
			Name:     lane.Name(),
			Channels: channels[lane],
			MIDINote: converter.DrumNote(lane),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"steps_type": chart.SSCStepsType,
		"lanes":      lanes,
	})
}

// handleDTXToSSC godoc
// @Summary Convert DTX to SSC
// @Description Upload a .dtx chart and receive the SSC note data
// @Tags convert
// @Accept multipart/form-data
// @Produce text/plain
// @Param file formData file true "DTX file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/dtx2ssc [post]
func (h *handlers) handleDTXToSSC(c *gin.Context) {
	h.handleConversion(c, converter.FormatSSC)
}

// handleDTXToMIDI godoc
// @Summary Convert DTX to a MIDI preview
// @Description Upload a .dtx chart and receive a General MIDI drum track
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "DTX file to convert"
// @Param tempo query number false "Preview tempo in BPM"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/dtx2midi [post]
func (h *handlers) handleDTXToMIDI(c *gin.Context) {
	h.handleConversion(c, converter.FormatMIDI)
}

// handleInspect godoc
// @Summary Inspect a DTX chart
// @Description Upload a .dtx chart and receive conversion statistics per measure
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "DTX file to inspect"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func (h *handlers) handleInspect(c *gin.Context) {
	data, _, ok := h.readUpload(c)
	if !ok {
		return
	}

	res, err := h.newConverter(c).Convert(bytes.NewReader(data))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":    res.Stats,
		"measures": res.Summarize(),
	})
}

func (h *handlers) handleConversion(c *gin.Context, target converter.Format) {
	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	conv := h.newConverter(c)

	var result []byte
	var err error
	var contentType string

	switch target {
	case converter.FormatSSC:
		result, err = conv.DTXToSSC(data)
		contentType = "text/plain; charset=utf-8"
	case converter.FormatMIDI:
		result, err = conv.DTXToMIDI(data)
		contentType = "audio/midi"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}

	if err != nil {
		h.fail(c, err)
		return
	}

	outputName := converter.OutputPath(filepath.Base(filename), target)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}

func (h *handlers) newConverter(c *gin.Context) *converter.Converter {
	tempo := h.cfg.MIDITempo
	if q := c.Query("tempo"); q != "" {
		if bpm, err := strconv.ParseFloat(q, 64); err == nil && bpm > 0 {
			tempo = bpm
		}
	}
	return converter.New(converter.WithMIDITempo(tempo))
}

func (h *handlers) readUpload(c *gin.Context) ([]byte, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}

	return data, header.Filename, true
}

// fail maps conversion errors to HTTP statuses. Anything other than a
// rejected input is reported to Sentry.
func (h *handlers) fail(c *gin.Context, err error) {
	if errors.Is(err, converter.ErrParse) || errors.Is(err, chart.ErrResolutionTooHigh) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
