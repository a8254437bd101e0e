package media

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"go.opentelemetry.io/otel/attribute"
)

var errEmptyMediaID = errors.New("server assigned no media id")

// API is the part of the remote contract the engine drives. It is satisfied
// by *client.MediaService.
type API interface {
	Init(ctx context.Context, req models.MediaInitRequest) (*models.MediaInitResponse, error)
	Uploaded(ctx context.Context, req models.MediaUploadedRequest) (*models.Media, error)
}

type Options struct {
	// ChunkSize overrides the multi-part division; it must match the server.
	ChunkSize  int64
	Transferer Transferer
	Observer   Observer
	Logger     logging.Logger
}

// Engine runs the init, transfer and confirm protocol for one asset per
// Upload call. An Engine is safe for concurrent use by independent uploads.
type Engine struct {
	api        API
	chunk      int64
	transferer Transferer
	observer   Observer
	logger     logging.Logger
	now        func() time.Time
}

func NewEngine(api API, opts Options) *Engine {
	e := &Engine{
		api:        api,
		chunk:      opts.ChunkSize,
		transferer: opts.Transferer,
		observer:   opts.Observer,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if e.chunk <= 0 {
		e.chunk = ChunkSize
	}
	if e.transferer == nil {
		e.transferer = NewHTTPTransferer()
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.logger == nil {
		e.logger = logging.Nop()
	}
	e.logger = e.logger.With("component", "media")
	return e
}

// Upload moves src to storage and returns the server media id once Confirm
// has been acknowledged. progress may be nil.
func (e *Engine) Upload(ctx context.Context, src Source, progress ProgressObserver) (mediaID int64, err error) {
	started := e.now()
	kind := src.Kind()
	ctx, span := startSpan(ctx, spanUpload,
		attribute.String(attrMediaType, string(kind)),
		attribute.Int64(attrSize, src.Size))
	defer func() {
		endSpan(span, err)
		e.observer.RecordUpload(e.now().Sub(started), src.Size, err)
	}()

	tracker := newProgressTracker(progress)
	log := e.logger.With("name", src.Name, "size", src.Size)

	plan, err := e.init(ctx, kind, src.Size)
	if err != nil {
		log.Warn(ctx, "upload init failed", "error", err)
		return 0, err
	}
	span.SetAttributes(attribute.Int64(attrMediaID, plan.Media()))
	log = log.With("media_id", plan.Media())
	tracker.report(0)

	parts, err := e.transfer(ctx, plan, src, tracker)
	if err != nil {
		log.Warn(ctx, "upload transfer failed", "error", err)
		return 0, err
	}

	if err := e.confirm(ctx, plan, parts); err != nil {
		log.Warn(ctx, "upload confirm failed", "error", err)
		return 0, err
	}

	tracker.report(100)
	log.Info(ctx, "upload confirmed", "parts", len(parts))
	return plan.Media(), nil
}

func (e *Engine) init(ctx context.Context, kind models.MediaType, size int64) (plan TransferPlan, err error) {
	started := e.now()
	ctx, span := startSpan(ctx, spanInit)
	defer func() {
		endSpan(span, err)
		e.observer.RecordStage(StageInit, e.now().Sub(started), err)
	}()

	resp, err := e.api.Init(ctx, models.MediaInitRequest{MediaType: kind, FileSize: size})
	if err != nil {
		return nil, &UploadError{Stage: StageInit, Err: err}
	}
	if resp == nil || resp.ID == 0 {
		return nil, &UploadError{Stage: StageInit, Err: errEmptyMediaID}
	}
	plan, err = PlanFromInit(resp, size, e.chunk)
	if err != nil {
		return nil, &UploadError{Stage: StageInit, Err: err}
	}
	return plan, nil
}

func (e *Engine) transfer(ctx context.Context, plan TransferPlan, src Source, tracker *progressTracker) (parts []UploadedPart, err error) {
	started := e.now()
	ctx, span := startSpan(ctx, spanTransfer)
	defer func() {
		endSpan(span, err)
		e.observer.RecordStage(StageTransfer, e.now().Sub(started), err)
	}()

	switch p := plan.(type) {
	case SinglePartPlan:
		body := io.NewSectionReader(src.Data, 0, src.Size)
		_, err := e.transferer.Put(ctx, p.URL, body, src.Size, src.ContentType, func(sent int64) {
			tracker.report(partProgress(0, 1, sent, src.Size))
		})
		if err != nil {
			return nil, &UploadError{Stage: StageTransfer, Err: err}
		}
		tracker.report(100)
		return nil, nil

	case MultiPartPlan:
		span.SetAttributes(attribute.Int(attrPartCount, len(p.Parts)))
		total := len(p.Parts)
		parts = make([]UploadedPart, 0, total)
		for i, part := range p.Parts {
			etag, err := e.putPart(ctx, part, src, func(sent int64) {
				tracker.report(partProgress(i, total, sent, part.Length))
			})
			if err != nil {
				return nil, &UploadError{Stage: StageTransfer, PartNumber: part.PartNumber, Err: err}
			}
			parts = append(parts, UploadedPart{PartNumber: part.PartNumber, ETag: etag})
			tracker.report(partProgress(i+1, total, 0, 0))
			e.logger.Debug(ctx, "part transferred", "media_id", p.MediaID, "part", part.PartNumber, "of", total)
		}
		return parts, nil
	}

	return nil, &UploadError{Stage: StageTransfer, Err: errNoDestination}
}

func (e *Engine) putPart(ctx context.Context, part PartTarget, src Source, onSent func(int64)) (etag string, err error) {
	ctx, span := startSpan(ctx, spanPart, attribute.Int(attrPartNumber, part.PartNumber))
	defer func() { endSpan(span, err) }()

	body := io.NewSectionReader(src.Data, part.Offset, part.Length)
	return e.transferer.Put(ctx, part.URL, body, part.Length, src.ContentType, onSent)
}

func (e *Engine) confirm(ctx context.Context, plan TransferPlan, parts []UploadedPart) (err error) {
	started := e.now()
	ctx, span := startSpan(ctx, spanConfirm)
	defer func() {
		endSpan(span, err)
		e.observer.RecordStage(StageConfirm, e.now().Sub(started), err)
	}()

	if _, err := e.api.Uploaded(ctx, confirmRequest(plan, parts)); err != nil {
		return &UploadError{Stage: StageConfirm, Err: err}
	}
	return nil
}
