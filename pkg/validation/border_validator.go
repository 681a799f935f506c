package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "go-image-framer/internal/errors"
)

// supportedExtensions lists upload extensions a registered decoder can read
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// InputValidator checks form values before any file is written
type InputValidator struct {
	validate         *validator.Validate
	maxBorderPercent int
}

// NewInputValidator creates a validator accepting border percentages in [0, maxBorderPercent]
func NewInputValidator(maxBorderPercent int) *InputValidator {
	return &InputValidator{
		validate:         validator.New(),
		maxBorderPercent: maxBorderPercent,
	}
}

// MaxBorderPercent returns the inclusive upper bound
func (v *InputValidator) MaxBorderPercent() int {
	return v.maxBorderPercent
}

// ValidateBorderPercent rejects percentages outside the configured range
func (v *InputValidator) ValidateBorderPercent(percent int) error {
	rule := fmt.Sprintf("gte=0,lte=%d", v.maxBorderPercent)
	if err := v.validate.Var(percent, rule); err != nil {
		return apperrors.NewValidationError(
			fmt.Sprintf("Border size must be between 0 and %d percent", v.maxBorderPercent), err)
	}
	return nil
}

// ValidateUploadName rejects empty names and extensions no decoder handles
func (v *InputValidator) ValidateUploadName(filename string) error {
	name := strings.TrimSpace(filename)
	if name == "" {
		return apperrors.NewValidationError("An image file is required", nil)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !supportedExtensions[ext] {
		return apperrors.NewValidationError("Unsupported image file type", nil).
			WithDetails(fmt.Sprintf("extension %q", ext))
	}
	return nil
}
