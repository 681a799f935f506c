package transport

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-image-framer/internal/config"
	apperrors "go-image-framer/internal/errors"
	"go-image-framer/internal/logger"
	"go-image-framer/internal/service"
	"go-image-framer/pkg/models"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	indexTemplate = "index.html"

	// Shown for every form-level failure, whichever field caused it.
	formInvalidMessage = "Please choose an image, enter a border size and confirm you are not a robot"
)

// FrameForm is the multipart form posted to the root path
type FrameForm struct {
	Image      *multipart.FileHeader `form:"image" binding:"required"`
	BorderSize string                `form:"border_size" binding:"required"`
	IAmHuman   bool                  `form:"i_am_human" binding:"required"`
	CSRFToken  string                `form:"csrf_token" binding:"required"`
}

// pageData feeds the index template
type pageData struct {
	CSRFToken        string
	MaxBorderPercent int
	Error            string
	Result           *models.ProcessResult
}

type handler struct {
	service          service.FramingService
	csrf             *CSRFManager
	requestTimeout   time.Duration
	maxBorderPercent int
}

// NewHandler wires the form, health, metrics and static routes
func NewHandler(svc service.FramingService, csrf *CSRFManager, metrics prometheus.Gatherer, cfg *config.Config) http.Handler {
	r := gin.New()

	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	h := &handler{
		service:          svc,
		csrf:             csrf,
		requestTimeout:   cfg.RequestTimeout,
		maxBorderPercent: cfg.MaxBorderPercent,
	}

	// Configure routes
	r.Use(static.Serve("/static", static.LocalFile(cfg.StaticDir, false)))
	r.GET("/", h.showForm)
	r.POST("/", h.submitForm)
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})))

	return r
}

func (h *handler) showForm(c *gin.Context) {
	h.render(c, http.StatusOK, pageData{}, nil)
}

func (h *handler) submitForm(c *gin.Context) {
	var form FrameForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message := fmt.Sprintf("The uploaded file is too large (limit %s)", formatBytes(tooLarge.Limit))
			h.fail(c, apperrors.NewValidationError(message, err), http.StatusRequestEntityTooLarge)
			return
		}
		h.fail(c, apperrors.NewValidationError(formInvalidMessage, err), 0)
		return
	}

	borderPercent, err := strconv.Atoi(strings.TrimSpace(form.BorderSize))
	if err != nil {
		h.fail(c, apperrors.NewValidationError(formInvalidMessage, err), 0)
		return
	}

	if err := h.csrf.Verify(form.CSRFToken); err != nil {
		h.fail(c, apperrors.NewValidationError(formInvalidMessage, err), 0)
		return
	}

	file, err := form.Image.Open()
	if err != nil {
		h.fail(c, apperrors.NewValidationError(formInvalidMessage, err), 0)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"filename":       form.Image.Filename,
		"size":           form.Image.Size,
		"border_percent": borderPercent,
		"ip":             c.ClientIP(),
	}).Debug("Processing framing request")

	result, err := h.service.Process(ctx, service.ProcessRequest{
		Filename:      form.Image.Filename,
		Content:       file,
		BorderPercent: borderPercent,
	})
	if err != nil {
		h.fail(c, err, 0)
		return
	}

	h.render(c, http.StatusOK, pageData{Result: result}, result)
}

// render negotiates between the HTML page and a JSON body. A fresh CSRF
// token is issued for every HTML render.
func (h *handler) render(c *gin.Context, code int, page pageData, jsonData interface{}) {
	token, err := h.csrf.Issue()
	if err != nil {
		logger.WithError(err).Error("Failed to issue CSRF token")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	page.CSRFToken = token
	page.MaxBorderPercent = h.maxBorderPercent

	if jsonData == nil {
		jsonData = gin.H{"csrf_token": token, "max_border_percent": h.maxBorderPercent}
	}

	c.Negotiate(code, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: indexTemplate,
		HTMLData: page,
		JSONData: jsonData,
	})
}

// fail logs err and re-renders the form with its user-facing message.
// A zero code takes the status from the error.
func (h *handler) fail(c *gin.Context, err error, code int) {
	if code == 0 {
		code = apperrors.GetStatusCode(err)
	}

	errType := string(apperrors.ErrorTypeInternal)
	if appErr, ok := apperrors.As(err); ok {
		errType = string(appErr.Type)
	}
	message := apperrors.UserMessage(err)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"error_type":  errType,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	h.render(c, code, pageData{Error: message}, models.ErrorResponse{
		Error:   http.StatusText(code),
		Type:    errType,
		Message: message,
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Info("Request handled")
	}
}

func formatBytes(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%d MiB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
