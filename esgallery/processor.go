package esgallery

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/modernice/goes/aggregate"
	"github.com/modernice/goes/event"
	"github.com/modernice/goes/helper/pick"
	"github.com/modernice/goes/helper/streams"
	"github.com/modernice/media-tools/image"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/optimize"
	"github.com/veligo/galleria/storage"
)

// renditionQuality is the encoding quality of generated renditions.
const renditionQuality = 85

// Processor generates renditions (responsive sizes) of uploaded gallery
// images and stores them alongside the original.
type Processor[EntryID ID] struct {
	encoding optimize.Encoding
	store    storage.Storage
}

// ProcessorResult is the result of processing a [gallery.Entry].
type ProcessorResult[EntryID ID] struct {
	image.PipelineResult

	Gallery aggregate.Ref

	// Trigger is the event that triggered the processing. If the [*Processor]
	// was called manually, Trigger is nil.
	Trigger event.Event

	// EntryID is the id of the processed entry.
	EntryID EntryID

	// Renditions are the stored renditions, keyed by "<width>x<height>".
	Renditions map[string]gallery.Locator
}

// Apply applies the result to a gallery by raising the appropriate events.
func (r ProcessorResult[EntryID]) Apply(g UploadableGallery[EntryID]) error {
	if _, err := g.SetRenditions(r.EntryID, r.Renditions); err != nil {
		return fmt.Errorf("set renditions: %w", err)
	}
	return nil
}

// NewProcessor returns a rendition processor for gallery images. If enc is
// nil, [optimize.DefaultEncoder] is used.
func NewProcessor[EntryID ID](enc optimize.Encoding, store storage.Storage) *Processor[EntryID] {
	if enc == nil {
		enc = optimize.DefaultEncoder
	}
	return &Processor[EntryID]{encoding: enc, store: store}
}

// Process runs the provided [image.Pipeline] on the stored original of the
// given entry and stores each produced image (except the original itself) as
// a rendition. The returned [ProcessorResult] can be applied to a gallery
// aggregate by calling [ProcessorResult.Apply].
func (p *Processor[EntryID]) Process(
	ctx context.Context,
	pipeline image.Pipeline,
	g UploadableGallery[EntryID],
	entryID EntryID,
) (ProcessorResult[EntryID], error) {
	e, ok := g.Entry(entryID)
	if !ok {
		return zeroResult[EntryID](), gallery.ErrEntryNotFound
	}

	filename := strings.TrimSpace(e.Filename)
	if filename == "" {
		filename = entryID.String()
	}

	galleryID, galleryName, _ := g.Aggregate()
	path := entryPath(galleryID, entryID, filename)

	r, err := p.store.Get(ctx, path)
	if err != nil {
		return zeroResult[EntryID](), fmt.Errorf("storage: %w", err)
	}

	img, _, err := stdimage.Decode(r)
	if err != nil {
		return zeroResult[EntryID](), fmt.Errorf("decode original image: %w", err)
	}

	mime := e.MIME
	if mime == "" {
		mime = optimize.DefaultFormat
	}

	result, err := pipeline.Run(ctx, img)
	if err != nil {
		return zeroResult[EntryID](), fmt.Errorf("pipeline: %w", err)
	}

	renditions := make(map[string]gallery.Locator)
	for _, pimg := range result.Images {
		if pimg.Original {
			continue
		}

		bounds := pimg.Image.Bounds()
		size := fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())

		var buf bytes.Buffer
		if err := p.encoding.Encode(&buf, mime, pimg.Image, renditionQuality); err != nil {
			return zeroResult[EntryID](), fmt.Errorf("encode rendition %s: %w", size, err)
		}

		locator, err := p.store.Put(ctx, renditionPath(galleryID, entryID, size, filename), &buf)
		if err != nil {
			return zeroResult[EntryID](), fmt.Errorf("store rendition %s: %w", size, err)
		}

		renditions[size] = locator
	}

	return ProcessorResult[EntryID]{
		PipelineResult: result,
		Gallery: aggregate.Ref{
			Name: galleryName,
			ID:   galleryID,
		},
		EntryID:    entryID,
		Renditions: renditions,
	}, nil
}

// PostProcessor generates renditions in the background. Whenever an upload of
// a gallery image succeeds, the post-processor is triggered to process that
// entry.
//
//	var p *Processor[uuid.UUID]
//	var bus event.Bus
//	var repo aggregate.Repository
//
//	galleries := repository.Typed(repo, NewProductImages)
//	pp := NewPostProcessor(p, bus, galleries.Fetch)
type PostProcessor[Gallery UploadableGallery[EntryID], EntryID ID] struct {
	processor    *Processor[EntryID]
	bus          event.Bus
	fetchGallery func(context.Context, uuid.UUID) (Gallery, error)

	// autoSave is only valid/used if autoApply is true
	autoSave  func(context.Context, Gallery) error
	autoApply bool
}

// PostProcessorOption is an option for [NewPostProcessor].
type PostProcessorOption[Gallery UploadableGallery[EntryID], EntryID ID] func(*PostProcessor[Gallery, EntryID])

// WithAutoApply returns a [PostProcessorOption] that automatically applies
// [ProcessorResult]s to gallery aggregates. If the provided `save` function
// is non-nil, galleries will also be saved after applying the result.
func WithAutoApply[EntryID ID, Gallery UploadableGallery[EntryID]](
	autoApply bool,
	save func(context.Context, Gallery) error,
) PostProcessorOption[Gallery, EntryID] {
	return func(pp *PostProcessor[Gallery, EntryID]) {
		pp.autoApply = autoApply
		pp.autoSave = save
	}
}

// NewPostProcessor returns a new post-processor for gallery images.
func NewPostProcessor[Gallery UploadableGallery[EntryID], EntryID ID](
	p *Processor[EntryID],
	bus event.Bus,
	fetchGallery func(context.Context, uuid.UUID) (Gallery, error),
	opts ...PostProcessorOption[Gallery, EntryID],
) *PostProcessor[Gallery, EntryID] {
	pp := &PostProcessor[Gallery, EntryID]{
		processor:    p,
		bus:          bus,
		fetchGallery: fetchGallery,
	}
	for _, opt := range opts {
		opt(pp)
	}
	return pp
}

// RunProcessorOption is an option for [*PostProcessor.Run].
type RunProcessorOption func(*runProcessorConfig)

// Workers returns a [RunProcessorOption] that sets the number of workers for
// [*PostProcessor.Run]. Defaults to 1.
func Workers(workers int) RunProcessorOption {
	if workers < 0 {
		workers = 0
	}
	return func(cfg *runProcessorConfig) {
		cfg.workers = workers
	}
}

// DiscardResults returns a [RunProcessorOption] that discards the
// [ProcessorResult]s instead of returning them in the result channel.
func DiscardResults(discard bool) RunProcessorOption {
	return func(cfg *runProcessorConfig) {
		cfg.discardResults = discard
	}
}

type runProcessorConfig struct {
	workers        int
	discardResults bool
}

// Run runs the post-processor in the background and returns a channel of
// results and a channel of errors. Processing stops when the provided Context
// is canceled. If the underlying event bus fails to subscribe to
// [ProcessorTriggerEvents], nil channels and the event bus error are returned.
func (pp *PostProcessor[Gallery, EntryID]) Run(
	ctx context.Context,
	pipeline image.Pipeline,
	opts ...RunProcessorOption,
) (<-chan ProcessorResult[EntryID], <-chan error, error) {
	cfg := runProcessorConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	events, errs, err := pp.bus.Subscribe(ctx, ProcessorTriggerEvents...)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe to %v events: %w", ProcessorTriggerEvents, err)
	}

	results := make(chan ProcessorResult[EntryID])
	processorErrors := make(chan error)
	outErrors := streams.FanInAll(errs, processorErrors)

	queue := processorQueue[Gallery, EntryID]{
		ctx:       ctx,
		cfg:       cfg,
		processor: pp,
		pipeline:  pipeline,
		events:    events,
		results:   results,
		errs:      processorErrors,
	}

	go queue.run()

	return results, outErrors, nil
}

type processorQueue[Gallery UploadableGallery[EntryID], EntryID ID] struct {
	ctx       context.Context
	cfg       runProcessorConfig
	processor *PostProcessor[Gallery, EntryID]
	pipeline  image.Pipeline
	events    <-chan event.Event
	results   chan<- ProcessorResult[EntryID]
	errs      chan<- error
}

func (q *processorQueue[Gallery, EntryID]) run() {
	defer close(q.results)

	var wg sync.WaitGroup
	wg.Add(q.cfg.workers)

	for i := 0; i < q.cfg.workers; i++ {
		go func() {
			defer wg.Done()
			q.work()
		}()
	}

	wg.Wait()
}

func (q *processorQueue[Gallery, EntryID]) work() {
	for evt := range q.events {
		result, err := q.uploadSucceeded(event.Cast[UploadSucceededData[EntryID]](evt))
		if err != nil {
			q.fail(fmt.Errorf("handle %q event: %w", evt.Name(), err))
			continue
		}

		result.Trigger = evt

		if q.processor.autoApply {
			if err := q.apply(result, pick.AggregateID(evt)); err != nil {
				q.fail(fmt.Errorf("apply result: %w", err))
			}
		}

		if !q.cfg.discardResults {
			q.push(result)
		}
	}
}

func (q *processorQueue[Gallery, EntryID]) apply(result ProcessorResult[EntryID], galleryID uuid.UUID) error {
	g, err := q.processor.fetchGallery(q.ctx, galleryID)
	if err != nil {
		return fmt.Errorf("fetch gallery: %w", err)
	}
	if err := result.Apply(g); err != nil {
		return err
	}

	if q.processor.autoSave != nil {
		if err := q.processor.autoSave(q.ctx, g); err != nil {
			return fmt.Errorf("autosave gallery: %w", err)
		}
	}

	return nil
}

func (q *processorQueue[Gallery, EntryID]) fail(err error) {
	select {
	case <-q.ctx.Done():
	case q.errs <- err:
	}
}

func (q *processorQueue[Gallery, EntryID]) push(r ProcessorResult[EntryID]) {
	select {
	case <-q.ctx.Done():
	case q.results <- r:
	}
}

func (q *processorQueue[Gallery, EntryID]) uploadSucceeded(evt event.Of[UploadSucceededData[EntryID]]) (zero ProcessorResult[EntryID], _ error) {
	galleryID := pick.AggregateID(evt)
	g, err := q.processor.fetchGallery(q.ctx, galleryID)
	if err != nil {
		return zero, fmt.Errorf("fetch gallery: %w", err)
	}

	data := evt.Data()

	result, err := q.processor.processor.Process(q.ctx, q.pipeline, g, data.EntryID)
	if err != nil {
		return result, fmt.Errorf("run processor: %w", err)
	}

	return result, nil
}

func zeroResult[EntryID ID]() (zero ProcessorResult[EntryID]) {
	return zero
}
