package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvview/internal/config"
	"github.com/JonMunkholm/csvview/internal/logging"
)

// Result is a parsed upload together with how it was read.
type Result struct {
	Dataset     *Dataset
	Delimiter   string
	Encoding    string
	Compression Compression
	// Detected is true when the charset-detecting fallback decoded the file.
	Detected bool
}

// Viewer runs the upload pipeline: inflate, decode, resolve the delimiter,
// parse and package. It holds only configuration and the run limiter, so
// one Viewer serves every request.
type Viewer struct {
	packager       Packager
	limiter        *RunLimiter
	sampleSize     int
	maxDecodedSize int64
	timeout        time.Duration
}

// NewViewer creates a Viewer from the upload and viewer settings of cfg.
func NewViewer(cfg *config.Config) *Viewer {
	return &Viewer{
		packager: Packager{
			PageSize:            cfg.Viewer.PageSize,
			VirtualizeThreshold: cfg.Viewer.VirtualizeThreshold,
		},
		limiter:        NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		sampleSize:     cfg.Viewer.SampleSize,
		maxDecodedSize: cfg.Upload.MaxDecodedSize,
		timeout:        cfg.Upload.Timeout,
	}
}

// Run parses up and packages it for the table widget.
//
// ErrNoInput means nothing was uploaded; callers show a placeholder.
// Decoding failures are ErrUndecodable and parse failures are *ParseError.
func (v *Viewer) Run(ctx context.Context, up Upload) (*View, error) {
	res, err := v.Load(ctx, up)
	if err != nil {
		return nil, err
	}

	view := v.packager.Package(up.Filename, res.Dataset)
	view.Delimiter = res.Delimiter
	view.Encoding = res.Encoding
	return view, nil
}

// Load runs every stage except packaging. Export uses it directly.
func (v *Viewer) Load(ctx context.Context, up Upload) (*Result, error) {
	if up.Filename == "" && len(up.Data) == 0 {
		return nil, ErrNoInput
	}

	if err := v.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer v.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	ctx = logging.WithRunID(ctx, uuid.NewString())
	logger := logging.WithFields(ctx,
		"filename", up.Filename,
		"bytes", len(up.Data),
		"delimiter", up.Delimiter.String(),
	).With(runAttrs(ctx)...)
	start := time.Now()
	logger.Debug("run started")

	data, comp, err := Inflate(up.Data, v.maxDecodedSize)
	if err != nil {
		logger.Warn("inflate failed", "compression", comp, "error", err)
		return nil, fmt.Errorf("inflate %s upload: %w", comp, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := v.decodeAndParse(ctx, data, up.Delimiter)
	if err != nil {
		logger.Info("run failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	res.Compression = comp

	logger.Info("run completed",
		"rows", res.Dataset.NumRows(),
		"columns", res.Dataset.NumColumns(),
		"encoding", res.Encoding,
		"resolved_delimiter", res.Delimiter,
		"compression", comp,
		"duration", time.Since(start),
	)
	return res, nil
}

// Status reports run slot occupancy.
func (v *Viewer) Status() RunLimiterStatus {
	return v.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx ends.
func (v *Viewer) WaitForRuns(ctx context.Context) error {
	return v.limiter.WaitForDrain(ctx)
}

// decodeAndParse tries the candidate encodings first. Only when none of
// them accepts the bytes does it fall back to charset detection, and any
// failure on that path other than the run ending is reported as
// ErrUndecodable.
func (v *Viewer) decodeAndParse(ctx context.Context, data []byte, choice DelimiterChoice) (*Result, error) {
	text, err := Decode(data)
	if err == nil {
		return v.parse(ctx, text, choice)
	}

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	logger.Debug("candidate encodings rejected upload, trying detection", "error", err)

	text, fbErr := DecodeDetected(data)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if fbErr != nil {
		logger.Warn("charset detection failed", "error", errors.Join(err, fbErr))
		return nil, ErrUndecodable
	}

	res, fbErr := v.parse(ctx, text, choice)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if fbErr != nil {
		logger.Warn("detected text did not parse", "encoding", text.Encoding, "error", fbErr)
		return nil, ErrUndecodable
	}
	return res, nil
}

func (v *Viewer) parse(ctx context.Context, text DecodedText, choice DelimiterChoice) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	delimiter := ResolveDelimiter(SampleText(text.Text, v.sampleSize), choice)

	ds, err := Parse(text.Text, delimiter)
	if err != nil {
		return nil, err
	}

	return &Result{
		Dataset:   ds,
		Delimiter: delimiter,
		Encoding:  text.Encoding,
		Detected:  text.Detected,
	}, nil
}
