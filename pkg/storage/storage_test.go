package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	w, err := store.Create(ctx, "recordings/a.wav")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.Write([]byte("RIFF")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ok, err := store.Exists(ctx, "recordings/a.wav")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}

	r, err := store.Open(ctx, "recordings/a.wav")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "RIFF" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalOpenMissing(t *testing.T) {
	ctx := context.Background()
	store, _ := NewLocal(t.TempDir())
	if _, err := store.Open(ctx, "missing.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	ok, err := store.Exists(ctx, "missing.wav")
	if err != nil || ok {
		t.Errorf("exists = %v, %v", ok, err)
	}
}

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}

// mockS3 is a thread-safe in-memory S3 backend for testing.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, &apiError{code: "NotFound", msg: "not found"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockS3()
	store := NewS3(mock, "bucket", "recordings")

	w, err := store.Create(ctx, "b.wav")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w.Write([]byte("data"))
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, ok := mock.objects["recordings/b.wav"]; !ok {
		t.Fatal("object not stored under prefixed key")
	}

	r, err := store.Open(ctx, "b.wav")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "data" {
		t.Errorf("unexpected content %q", data)
	}

	ok, err := store.Exists(ctx, "b.wav")
	if err != nil || !ok {
		t.Errorf("exists = %v, %v", ok, err)
	}
}

func TestS3OpenMissing(t *testing.T) {
	ctx := context.Background()
	store := NewS3(newMockS3(), "bucket", "")
	if _, err := store.Open(ctx, "missing.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
