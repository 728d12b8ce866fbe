package storage_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/veligo/galleria/storage"
)

func TestMemoryStorage(t *testing.T) {
	var store storage.MemoryStorage

	locator, err := store.Put(context.Background(), "galleries/1/foo.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("put image: %v", err)
	}

	if locator != "memory://galleries/1/foo.jpg" {
		t.Fatalf("locator should be %q; got %q", "memory://galleries/1/foo.jpg", locator)
	}

	if !locator.Durable() {
		t.Fatalf("stored locator should be durable")
	}

	r, err := store.Get(context.Background(), "galleries/1/foo.jpg")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}

	b, _ := io.ReadAll(r)
	if !bytes.Equal(b, []byte("image bytes")) {
		t.Fatalf("retrieved image differs from stored image")
	}
}

func TestMemoryStorage_SetRoot(t *testing.T) {
	var store storage.MemoryStorage
	store.SetRoot("tenants/42")

	locator, err := store.Put(context.Background(), "foo.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("put image: %v", err)
	}

	if locator != "memory://tenants/42/foo.jpg" {
		t.Fatalf("locator should include the root; got %q", locator)
	}

	if _, ok := store.Files()["tenants/42/foo.jpg"]; !ok {
		t.Fatalf("stored file should be keyed below the root")
	}
}

func TestMemoryStorage_Get_notFound(t *testing.T) {
	var store storage.MemoryStorage

	if _, err := store.Get(context.Background(), "missing.jpg"); err == nil {
		t.Fatalf("getting a missing image should fail")
	}
}

func TestFilesystemStorage(t *testing.T) {
	store, err := storage.NewFilesystemStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	locator, err := store.Put(context.Background(), "galleries/1/foo.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("put image: %v", err)
	}

	if !strings.HasPrefix(string(locator), "file://") {
		t.Fatalf("locator should be a file:// url; got %q", locator)
	}

	r, err := store.Get(context.Background(), "galleries/1/foo.jpg")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}

	b, _ := io.ReadAll(r)
	if !bytes.Equal(b, []byte("image bytes")) {
		t.Fatalf("retrieved image differs from stored image")
	}
}

func TestFilesystemStorage_overwrite(t *testing.T) {
	store, err := storage.NewFilesystemStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	if _, err := store.Put(context.Background(), "foo.jpg", strings.NewReader("first")); err != nil {
		t.Fatalf("put image: %v", err)
	}

	if _, err := store.Put(context.Background(), "foo.jpg", strings.NewReader("second")); err != nil {
		t.Fatalf("overwrite image: %v", err)
	}

	r, err := store.Get(context.Background(), "foo.jpg")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}

	b, _ := io.ReadAll(r)
	if !bytes.Equal(b, []byte("second")) {
		t.Fatalf("overwritten image should have the new contents; got %q", b)
	}
}

func TestSQLiteStorage(t *testing.T) {
	store, err := storage.NewSQLiteStorage(t.TempDir() + "/galleria.db")
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	defer store.Close()

	locator, err := store.Put(context.Background(), "galleries/1/foo.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("put image: %v", err)
	}

	if locator != "sqlite://galleries/1/foo.jpg" {
		t.Fatalf("locator should be %q; got %q", "sqlite://galleries/1/foo.jpg", locator)
	}

	r, err := store.Get(context.Background(), "galleries/1/foo.jpg")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}

	b, _ := io.ReadAll(r)
	if !bytes.Equal(b, []byte("image bytes")) {
		t.Fatalf("retrieved image differs from stored image")
	}
}

func TestSQLiteStorage_overwrite(t *testing.T) {
	store, err := storage.NewSQLiteStorage(t.TempDir() + "/galleria.db")
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	defer store.Close()

	if _, err := store.Put(context.Background(), "foo.jpg", strings.NewReader("first")); err != nil {
		t.Fatalf("put image: %v", err)
	}

	if _, err := store.Put(context.Background(), "foo.jpg", strings.NewReader("second")); err != nil {
		t.Fatalf("overwrite image: %v", err)
	}

	r, err := store.Get(context.Background(), "foo.jpg")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}

	b, _ := io.ReadAll(r)
	if !bytes.Equal(b, []byte("second")) {
		t.Fatalf("overwritten image should have the new contents; got %q", b)
	}
}

func TestSQLiteStorage_Get_notFound(t *testing.T) {
	store, err := storage.NewSQLiteStorage(t.TempDir() + "/galleria.db")
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	defer store.Close()

	if _, err := store.Get(context.Background(), "missing.jpg"); err == nil {
		t.Fatalf("getting a missing image should fail")
	}
}

func TestDataURI(t *testing.T) {
	data := []byte("image bytes")

	locator := storage.DataURI("image/jpeg", data)

	if !locator.Inline() {
		t.Fatalf("data uri should be an inline locator")
	}

	if !locator.Durable() {
		t.Fatalf("data uri should be durable")
	}

	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
	if string(locator) != want {
		t.Fatalf("locator should be %q; got %q", want, locator)
	}
}
