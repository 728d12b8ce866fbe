package upload_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/intake"
	"github.com/veligo/galleria/internal/galleryx"
	"github.com/veligo/galleria/optimize"
	"github.com/veligo/galleria/preview"
	"github.com/veligo/galleria/storage"
	"github.com/veligo/galleria/upload"
)

type fixture struct {
	gallery  *gallery.Base[uuid.UUID]
	previews *preview.Registry
	store    *storage.MemoryStorage
	reports  [][]gallery.Locator
	failures []string
}

func newFixture(t *testing.T, opts ...upload.Option[uuid.UUID]) (*fixture, *upload.Coordinator[uuid.UUID]) {
	t.Helper()

	f := &fixture{
		gallery:  gallery.New[uuid.UUID](),
		previews: &preview.Registry{},
		store:    &storage.MemoryStorage{},
	}

	opts = append([]upload.Option[uuid.UUID]{
		upload.WithSettleDelay[uuid.UUID](time.Millisecond),
		upload.WithOnChange[uuid.UUID](func(locators []gallery.Locator) {
			f.reports = append(f.reports, locators)
		}),
		upload.WithNotifier[uuid.UUID](upload.NotifierFunc(func(filename string, err error) {
			f.failures = append(f.failures, filename)
		})),
	}, opts...)

	c := upload.New(f.gallery, f.previews, optimize.New(nil, optimize.Options{}), f.store, opts...)

	return f, c
}

func admit(t *testing.T, f *fixture, files ...intake.File) []gallery.Entry[uuid.UUID] {
	t.Helper()

	entries, err := intake.Admit(f.previews, f.gallery, 10, uuid.New, files...)
	if err != nil {
		t.Fatalf("admit batch: %v", err)
	}
	return entries
}

func TestCoordinator_Process(t *testing.T) {
	f, c := newFixture(t, upload.WithOwner[uuid.UUID]("products/42"))

	entries := admit(t, f,
		intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)},
		intake.File{Name: "b.jpg", Data: galleryx.JPEG(64, 64)},
		intake.File{Name: "c.jpg", Data: galleryx.JPEG(64, 64)},
	)

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	if len(f.reports) != 1 {
		t.Fatalf("batch should be reported exactly once; got %d reports", len(f.reports))
	}

	report := f.reports[0]
	if len(report) != 3 {
		t.Fatalf("report should contain 3 locators; has %d", len(report))
	}

	for i, l := range report {
		if !l.Durable() {
			t.Fatalf("reported locator %d should be durable; got %q", i, l)
		}
		if l.Transient() {
			t.Fatalf("reported locator %d should not be a preview handle; got %q", i, l)
		}
	}

	for i, e := range entries {
		stored, ok := f.gallery.Entry(e.ID)
		if !ok {
			t.Fatalf("entry %q should remain in the gallery", e.Filename)
		}

		if stored.Status != gallery.StatusReady {
			t.Fatalf("entry %q should be ready; is %s", e.Filename, stored.Status)
		}

		if stored.Source != nil {
			t.Fatalf("ready entry %q should not retain its raw payload", e.Filename)
		}

		if stored.Locator != report[i] {
			t.Fatalf("report order should match gallery order")
		}
	}

	if f.previews.Len() != 0 {
		t.Fatalf("all preview handles should be released; %d remain", f.previews.Len())
	}

	if len(f.store.Files()) != 3 {
		t.Fatalf("store should hold 3 images; holds %d", len(f.store.Files()))
	}
}

func TestCoordinator_Process_partialFailure(t *testing.T) {
	f, c := newFixture(t, upload.WithOwner[uuid.UUID]("products/42"))

	entries := admit(t, f,
		intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)},
		intake.File{Name: "broken.jpg", Data: galleryx.JPEG(64, 64)},
		intake.File{Name: "c.jpg", Data: galleryx.JPEG(64, 64)},
	)

	// Corrupt the payload after admission so validation passes but decoding fails.
	corrupted := append([]byte{0xFF, 0xD8, 0xFF}, []byte("garbage")...)
	corrupted = append(corrupted, make([]byte, 512)...)
	f.gallery.Update(entries[1].ID, func(e gallery.Entry[uuid.UUID]) gallery.Entry[uuid.UUID] {
		e.Source = corrupted
		return e
	})

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	if len(f.failures) != 1 || f.failures[0] != "broken.jpg" {
		t.Fatalf("failure notification should name broken.jpg; got %v", f.failures)
	}

	if len(f.reports) != 1 {
		t.Fatalf("batch should be reported exactly once; got %d reports", len(f.reports))
	}

	if len(f.reports[0]) != 2 {
		t.Fatalf("failed entry should be excluded from the report; got %d locators", len(f.reports[0]))
	}

	failed, _ := f.gallery.Entry(entries[1].ID)
	if failed.Status != gallery.StatusFailed {
		t.Fatalf("broken entry should be failed; is %s", failed.Status)
	}

	if failed.Error == "" {
		t.Fatalf("failed entry should retain the error detail")
	}

	if !failed.Locator.Transient() {
		t.Fatalf("failed entry should keep its preview handle; got %q", failed.Locator)
	}

	if _, ok := f.previews.Get(failed.Locator); !ok {
		t.Fatalf("preview of the failed entry should stay registered")
	}
}

func TestCoordinator_Process_unbound(t *testing.T) {
	f, c := newFixture(t)

	if c.Bound() {
		t.Fatalf("coordinator without owner should be unbound")
	}

	entries := admit(t, f, intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)})

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	stored, _ := f.gallery.Entry(entries[0].ID)
	if !stored.Locator.Inline() {
		t.Fatalf("unbound coordinator should inline images as data uris; got %q", stored.Locator)
	}

	if len(f.store.Files()) != 0 {
		t.Fatalf("unbound coordinator should not touch storage")
	}
}

func TestCoordinator_Process_updatesMetadata(t *testing.T) {
	f, c := newFixture(t, upload.WithOwner[uuid.UUID]("products/42"))

	entries := admit(t, f, intake.File{Name: "a.png", Data: galleryx.PNG(64, 64)})

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	stored, _ := f.gallery.Entry(entries[0].ID)

	if stored.MIME != "image/jpeg" {
		t.Fatalf("entry metadata should reflect the optimized output; got %q", stored.MIME)
	}

	if stored.Dimensions.Width() != 64 || stored.Dimensions.Height() != 64 {
		t.Fatalf("entry should carry the output dimensions; got %dx%d", stored.Dimensions.Width(), stored.Dimensions.Height())
	}

	if stored.Filesize <= 0 {
		t.Fatalf("entry should carry the output filesize")
	}
}

func TestCoordinator_Remove(t *testing.T) {
	f, c := newFixture(t, upload.WithOwner[uuid.UUID]("products/42"))

	entries := admit(t, f,
		intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)},
		intake.File{Name: "b.jpg", Data: galleryx.JPEG(64, 64)},
	)

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	if err := c.Remove(entries[0].ID); err != nil {
		t.Fatalf("remove entry: %v", err)
	}

	if len(f.reports) != 2 {
		t.Fatalf("removal should report the committed set immediately; got %d reports", len(f.reports))
	}

	if len(f.reports[1]) != 1 {
		t.Fatalf("report after removal should contain 1 locator; has %d", len(f.reports[1]))
	}
}

func TestCoordinator_Remove_pendingEntry(t *testing.T) {
	f, c := newFixture(t)

	entries := admit(t, f, intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)})

	// Remove before processing; the preview handle must be revoked.
	if err := c.Remove(entries[0].ID); err != nil {
		t.Fatalf("remove entry: %v", err)
	}

	if f.previews.Len() != 0 {
		t.Fatalf("removing a pending entry should release its preview; %d remain", f.previews.Len())
	}

	if f.gallery.Count() != 0 {
		t.Fatalf("removed entry should be gone from the gallery; %d remain", f.gallery.Count())
	}
}

func TestCoordinator_Process_removedEntry(t *testing.T) {
	f, c := newFixture(t)

	entries := admit(t, f, intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)})

	// Remove before the upload starts; Process must skip the entry.
	if err := c.Remove(entries[0].ID); err != nil {
		t.Fatalf("remove entry: %v", err)
	}

	before := f.gallery.Count()

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	if f.gallery.Count() != before {
		t.Fatalf("processing after removal should not resurrect the entry")
	}
}

func TestCoordinator_Reorder(t *testing.T) {
	f, c := newFixture(t, upload.WithOwner[uuid.UUID]("products/42"))

	entries := admit(t, f,
		intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)},
		intake.File{Name: "b.jpg", Data: galleryx.JPEG(64, 64)},
	)

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	if !c.Reorder(1, 0) {
		t.Fatalf("reorder should report a change")
	}

	if len(f.reports) != 2 {
		t.Fatalf("reorder should report the committed set; got %d reports", len(f.reports))
	}

	primary, _ := f.gallery.Primary()
	if primary.ID != entries[1].ID {
		t.Fatalf("reorder should change the primary image")
	}

	if c.Reorder(1, 1) {
		t.Fatalf("reorder with equal indices should be a no-op")
	}

	if len(f.reports) != 2 {
		t.Fatalf("a no-op reorder should not be reported")
	}
}

func TestCoordinator_Process_canceled(t *testing.T) {
	f, c := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := admit(t, f, intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)})

	if err := c.Process(ctx, entries...); err == nil {
		t.Fatalf("processing with a canceled context should fail")
	}

	if len(f.reports) != 0 {
		t.Fatalf("a canceled batch should not be reported")
	}
}

func TestCoordinator_Process_storagePath(t *testing.T) {
	f, c := newFixture(t, upload.WithOwner[uuid.UUID]("products/42"))

	entries := admit(t, f, intake.File{Name: "a.jpg", Data: galleryx.JPEG(64, 64)})

	if err := c.Process(context.Background(), entries...); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	for p := range f.store.Files() {
		if !strings.HasPrefix(p, "products/42/") {
			t.Fatalf("stored path should be below the owner; got %q", p)
		}
		if !strings.HasSuffix(p, "/a.jpg") {
			t.Fatalf("stored path should end with the filename; got %q", p)
		}
	}
}
