// Package convert runs one map-link conversion: it picks the direction from
// the input file extension, converts between the binary and text forms and
// writes the sibling output file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/ssargent/maplink/pkg/codec"
	"github.com/ssargent/maplink/pkg/config"
	"github.com/ssargent/maplink/pkg/metrics"
	"github.com/ssargent/maplink/pkg/textform"
)

// ErrUnsupportedExtension is returned for inputs that are neither binary nor text
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ErrVerifyFailed is returned when the verify pass does not reproduce the model
var ErrVerifyFailed = errors.New("round-trip verification failed")

// Storage reads inputs and persists outputs
type Storage interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// Result describes a completed conversion
type Result struct {
	Direction  string
	InputPath  string
	OutputPath string
	Records    int
	Strings    int
	Bytes      int
}

// Converter converts map-link files between their binary and text forms
type Converter struct {
	config  *config.Config
	storage Storage
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewConverter creates a converter; metrics and logger may be nil
func NewConverter(cfg *config.Config, storage Storage, m *metrics.Metrics, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{config: cfg, storage: storage, metrics: m, logger: logger}
}

// Direction returns the conversion direction and output path for an input path
func (c *Converter) Direction(path string) (string, string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	switch {
	case strings.EqualFold(ext, c.config.BinaryExtension):
		return metrics.DirectionDecode, stem + c.config.TextExtension, nil
	case strings.EqualFold(ext, c.config.TextExtension), c.config.TextExtension == ".yaml" && strings.EqualFold(ext, ".yml"):
		return metrics.DirectionEncode, stem + c.config.BinaryExtension, nil
	default:
		return "", "", fmt.Errorf("%w %q: want %s or %s", ErrUnsupportedExtension, ext, c.config.BinaryExtension, c.config.TextExtension)
	}
}

// Run converts the file at path and writes the sibling output file.
// Nothing is written unless the whole conversion succeeds.
func (c *Converter) Run(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	direction, outPath, err := c.Direction(path)
	if err != nil {
		return nil, err
	}

	log := c.logger.With("direction", direction, "input", path)
	log.Debug("starting conversion", "output", outPath)

	res, err := c.run(ctx, direction, path, outPath)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordFailure(direction, errorKind(err), time.Since(start))
		}
		log.Debug("conversion failed", "error", err)
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordSuccess(direction, res.Records, res.Strings, res.Bytes, time.Since(start))
	}
	log.Info("converted", "output", outPath, "records", res.Records, "strings", res.Strings, "bytes", res.Bytes)
	return res, nil
}

func (c *Converter) run(ctx context.Context, direction, path, outPath string) (*Result, error) {
	input, err := c.storage.Read(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		file   *codec.File
		output []byte
	)
	switch direction {
	case metrics.DirectionDecode:
		file, output, err = c.decode(input)
	default:
		file, output, err = c.encode(input)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.storage.Write(outPath, output); err != nil {
		return nil, err
	}

	return &Result{
		Direction:  direction,
		InputPath:  path,
		OutputPath: outPath,
		Records:    len(file.Records),
		Strings:    codec.BuildStringPool(file).Len(),
		Bytes:      len(output),
	}, nil
}

// decode turns a binary table into its text form
func (c *Converter) decode(input []byte) (*codec.File, []byte, error) {
	file, err := codec.Decode(input)
	if err != nil {
		return nil, nil, err
	}
	if c.config.Verify {
		if err := verifyEncodable(file); err != nil {
			return nil, nil, err
		}
	}
	text, err := textform.Marshal(file)
	if err != nil {
		return nil, nil, err
	}
	if c.config.Verify {
		back, err := textform.Unmarshal(text)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrVerifyFailed, err)
		}
		if !sameRecords(file, back) {
			return nil, nil, fmt.Errorf("%w: text form does not read back as the same table", ErrVerifyFailed)
		}
	}
	return file, text, nil
}

// encode turns a text document into a binary table
func (c *Converter) encode(input []byte) (*codec.File, []byte, error) {
	file, err := textform.Unmarshal(input)
	if err != nil {
		return nil, nil, err
	}
	data, err := codec.Encode(file)
	if err != nil {
		return nil, nil, err
	}
	if c.config.Verify {
		back, err := codec.Decode(data)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrVerifyFailed, err)
		}
		if !sameRecords(file, back) {
			return nil, nil, fmt.Errorf("%w: re-decoded table differs from the document", ErrVerifyFailed)
		}
	}
	return file, data, nil
}

// verifyEncodable checks that a decoded table survives encode and decode
func verifyEncodable(file *codec.File) error {
	data, err := codec.Encode(file)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	back, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	if !sameRecords(file, back) {
		return fmt.Errorf("%w: re-encoded table differs from the input", ErrVerifyFailed)
	}
	return nil
}

func sameRecords(a, b *codec.File) bool {
	if a.Schema != b.Schema || len(a.Records) != len(b.Records) {
		return false
	}
	for i := range a.Records {
		if !sameRecord(a.Records[i], b.Records[i]) {
			return false
		}
	}
	return true
}

// sameRecord compares values treating NaN as equal to NaN
func sameRecord(a, b codec.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if math.IsNaN(x.Float) && math.IsNaN(y.Float) {
			x.Float, y.Float = 0, 0
		}
		if x != y {
			return false
		}
	}
	return true
}

// errorKind maps an error to the label used in metrics
func errorKind(err error) string {
	switch codec.KindOf(err) {
	case codec.ErrMalformedHeader:
		return "malformed_header"
	case codec.ErrTruncatedRecord:
		return "truncated_record"
	case codec.ErrUnterminatedString:
		return "unterminated_string"
	case codec.ErrInvalidString:
		return "invalid_string"
	case codec.ErrUnencodableValue:
		return "unencodable_value"
	case codec.ErrSchemaMismatch:
		return "schema_mismatch"
	}
	switch {
	case errors.Is(err, ErrVerifyFailed):
		return "verify_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "io"
}
