package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fin-extract/internal/models"
	"fin-extract/internal/provider"
)

// fakeProvider records calls and fails on demand.
type fakeProvider struct {
	mu sync.Mutex

	failUpload map[string]bool // by filename
	failDelete map[string]bool // by id
	missing    map[string]bool // by id, delete answers not found
	answer     string
	answerErr  error
	answerFn   func(provider.CompletionRequest) (string, error)
	remote     []models.RemoteFile

	nextID    int
	uploaded  map[string][]byte // id -> content
	deletes   []string
	completes []provider.CompletionRequest
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		failUpload: map[string]bool{},
		failDelete: map[string]bool{},
		missing:    map[string]bool{},
		uploaded:   map[string][]byte{},
		answer:     "ok",
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Upload(_ context.Context, filename string, r io.Reader, purpose string) (models.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload[filename] {
		return models.RemoteFile{}, errors.New("upload rejected")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return models.RemoteFile{}, err
	}
	f.nextID++
	id := fmt.Sprintf("file-%d", f.nextID)
	f.uploaded[id] = data
	return models.RemoteFile{
		ID:        id,
		Filename:  filename,
		Purpose:   purpose,
		Bytes:     int64(len(data)),
		CreatedAt: time.Now(),
		Status:    "processed",
	}, nil
}

func (f *fakeProvider) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.failDelete[id] {
		return errors.New("delete rejected")
	}
	if f.missing[id] {
		return fmt.Errorf("delete %s: %w", id, provider.ErrNotFound)
	}
	delete(f.uploaded, id)
	return nil
}

func (f *fakeProvider) List(context.Context) ([]models.RemoteFile, error) {
	return f.remote, nil
}

func (f *fakeProvider) Complete(_ context.Context, req provider.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completes = append(f.completes, req)
	if f.answerFn != nil {
		return f.answerFn(req)
	}
	return f.answer, f.answerErr
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploaded)
}

func (f *fakeProvider) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}
