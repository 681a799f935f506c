package service

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "go-image-framer/internal/errors"
	"go-image-framer/internal/logger"
	"go-image-framer/internal/observer"
	"go-image-framer/internal/processor"
	"go-image-framer/internal/repository"
	"go-image-framer/internal/storage"
	"go-image-framer/pkg/models"
	"go-image-framer/pkg/validation"
)

// Artifact base names inside each request's results directory
const (
	ResultFilename    = "result.jpg"
	HistogramFilename = "histogram.png"
)

// ProcessRequest carries one form submission
type ProcessRequest struct {
	Filename      string
	Content       io.Reader
	BorderPercent int
}

// FramingService turns an upload into a bordered image and a channel histogram
type FramingService interface {
	Process(ctx context.Context, req ProcessRequest) (*models.ProcessResult, error)
}

// framingService implements FramingService
type framingService struct {
	store      storage.Store
	images     repository.ImageRepository
	compositor processor.BorderCompositor
	histograms processor.HistogramRenderer
	validator  *validation.InputValidator
	events     observer.Subject
	timeout    time.Duration
	pool       *WorkerPool
	newID      func() string
}

// Option customises a framing service
type Option func(*framingService)

// WithWorkerPool runs decoding and rendering on pool instead of the caller's goroutine
func WithWorkerPool(pool *WorkerPool) Option {
	return func(s *framingService) {
		s.pool = pool
	}
}

// NewFramingService creates a new framing service
func NewFramingService(
	store storage.Store,
	images repository.ImageRepository,
	compositor processor.BorderCompositor,
	histograms processor.HistogramRenderer,
	validator *validation.InputValidator,
	events observer.Subject,
	timeout time.Duration,
	opts ...Option,
) FramingService {
	s := &framingService{
		store:      store,
		images:     images,
		compositor: compositor,
		histograms: histograms,
		validator:  validator,
		events:     events,
		timeout:    timeout,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process validates the submission, stores the upload, then produces both
// artifacts from the same decoded image. Either both artifacts exist
// afterwards or neither does.
func (s *framingService) Process(ctx context.Context, req ProcessRequest) (*models.ProcessResult, error) {
	start := time.Now()

	if req.Content == nil {
		return nil, apperrors.NewValidationError("An image file is required", nil)
	}
	if err := s.validator.ValidateUploadName(req.Filename); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateBorderPercent(req.BorderPercent); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	requestID := s.newID()

	uploadPath, err := s.store.SaveUpload(ctx, requestID, req.Filename, req.Content)
	if err != nil {
		return nil, s.fail(ctx, requestID, req, start, classify(err))
	}
	s.notify(ctx, observer.ProcessingEvent{
		EventType: observer.UploadStored,
		RequestID: requestID,
		Filename:  req.Filename,
		Success:   true,
	})
	s.notify(ctx, observer.ProcessingEvent{
		EventType: observer.ProcessingStarted,
		RequestID: requestID,
		Filename:  req.Filename,
		Metadata:  map[string]interface{}{"border_percent": req.BorderPercent},
	})

	var out *artifacts
	produce := func(ctx context.Context) error {
		var err error
		out, err = s.produce(ctx, requestID, uploadPath, req.BorderPercent)
		return err
	}
	if s.pool != nil {
		err = s.pool.Do(ctx, produce)
	} else {
		err = produce(ctx)
	}
	if err != nil {
		if rmErr := s.store.RemoveArtifacts(requestID); rmErr != nil {
			logger.WithError(rmErr).WithField("request_id", requestID).Warn("Failed to remove partial artifacts")
		}
		return nil, s.fail(ctx, requestID, req, start, classify(err))
	}

	result, err := s.buildResult(requestID, req, start, uploadPath, out)
	if err != nil {
		return nil, s.fail(ctx, requestID, req, start, apperrors.NewInternalError("Could not publish the results", err))
	}

	s.notify(ctx, observer.ProcessingEvent{
		EventType:      observer.ProcessingCompleted,
		RequestID:      requestID,
		Filename:       req.Filename,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"border_percent": req.BorderPercent,
			"border_width":   out.bordered.BorderWidth,
			"source_format":  out.meta.Format,
		},
	})
	return result, nil
}

// artifacts collects what one successful run produced
type artifacts struct {
	meta          *models.ImageMetadata
	bordered      *processor.Bordered
	histogram     *processor.ChannelHistogram
	resultPath    string
	histogramPath string
}

// produce decodes the stored upload once and runs both transforms on it in parallel
func (s *framingService) produce(ctx context.Context, requestID, uploadPath string, percent int) (*artifacts, error) {
	img, meta, err := s.images.Load(ctx, uploadPath)
	if err != nil {
		return nil, err
	}

	out := &artifacts{meta: meta}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.bordered, out.resultPath, err = s.writeBordered(gctx, requestID, img, percent)
		return err
	})
	g.Go(func() error {
		var err error
		out.histogram, out.histogramPath, err = s.writeHistogram(gctx, requestID, img)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *framingService) writeBordered(ctx context.Context, requestID string, img image.Image, percent int) (*processor.Bordered, string, error) {
	bordered, err := s.compositor.Compose(img, percent)
	if err != nil {
		return nil, "", err
	}
	p, err := s.store.WriteArtifact(ctx, requestID, ResultFilename, func(w io.Writer) error {
		return s.compositor.Encode(w, bordered)
	})
	if err != nil {
		return nil, "", renderFailure("Could not write the bordered image", err)
	}
	return bordered, p, nil
}

func (s *framingService) writeHistogram(ctx context.Context, requestID string, img image.Image) (*processor.ChannelHistogram, string, error) {
	histogram, err := s.histograms.Compute(img)
	if err != nil {
		return nil, "", err
	}
	p, err := s.store.WriteArtifact(ctx, requestID, HistogramFilename, func(w io.Writer) error {
		return s.histograms.Render(histogram, w)
	})
	if err != nil {
		return nil, "", renderFailure("Could not render the color histogram", err)
	}
	return histogram, p, nil
}

func (s *framingService) buildResult(requestID string, req ProcessRequest, start time.Time, uploadPath string, out *artifacts) (*models.ProcessResult, error) {
	uploadURL, err := s.store.URL(uploadPath)
	if err != nil {
		return nil, err
	}
	resultURL, err := s.store.URL(out.resultPath)
	if err != nil {
		return nil, err
	}
	histogramURL, err := s.store.URL(out.histogramPath)
	if err != nil {
		return nil, err
	}

	bounds := out.bordered.Image.Bounds()
	return &models.ProcessResult{
		RequestID:         requestID,
		Timestamp:         start.UTC(),
		ProcessingTimeSec: time.Since(start).Seconds(),
		UploadURL:         uploadURL,
		ResultURL:         resultURL,
		HistogramURL:      histogramURL,
		BorderPercent:     req.BorderPercent,
		BorderWidth:       out.bordered.BorderWidth,
		Source:            models.Dimensions{Width: out.meta.Width, Height: out.meta.Height},
		Output:            models.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()},
		SourceFormat:      out.meta.Format,
		Channels:          out.histogram.Summaries(),
	}, nil
}

func (s *framingService) fail(ctx context.Context, requestID string, req ProcessRequest, start time.Time, appErr *apperrors.AppError) *apperrors.AppError {
	s.notify(ctx, observer.ProcessingEvent{
		EventType:      observer.ProcessingFailed,
		RequestID:      requestID,
		Filename:       req.Filename,
		ProcessingTime: time.Since(start),
		ErrorType:      string(appErr.Type),
		ErrorMessage:   appErr.Error(),
	})
	return appErr
}

func (s *framingService) notify(ctx context.Context, event observer.ProcessingEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}

// renderFailure keeps context errors intact so they classify as timeouts
func renderFailure(message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.NewRenderError(message, err)
}

// classify maps errors from the lower layers onto user-facing AppErrors
func classify(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Processing took too long", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("Processing was cancelled before it finished", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNotFoundError("The uploaded file is no longer available", err)
	case errors.Is(err, repository.ErrUnsupportedFormat), errors.Is(err, repository.ErrCorruptImage):
		return apperrors.NewDecodeError("The uploaded file could not be decoded as an image", err)
	case errors.Is(err, processor.ErrEmptyImage):
		return apperrors.NewDecodeError("The uploaded image has no pixels", err)
	case errors.Is(err, processor.ErrUnsupportedLayout):
		return apperrors.NewUnsupportedLayoutError("Only images with red, green and blue channels are supported", err)
	case errors.Is(err, processor.ErrOutputTooLarge):
		return apperrors.NewValidationError("The border size would produce an image that is too large", err)
	case errors.Is(err, processor.ErrNegativeBorder):
		return apperrors.NewValidationError("Border size must not be negative", err)
	case errors.Is(err, storage.ErrInvalidFilename):
		return apperrors.NewValidationError("The uploaded file name is not usable", err)
	default:
		return apperrors.NewInternalError("Something went wrong while processing the image", err)
	}
}
