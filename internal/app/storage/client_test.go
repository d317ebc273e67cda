package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubObjectStore is a minimal S3-compatible endpoint: it answers
// list-type=2 queries from a fixed key set and records deletes.
type stubObjectStore struct {
	mu      sync.Mutex
	keys    []string
	deletes []string
}

func (s *stubObjectStore) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
			prefix := r.URL.Query().Get("prefix")

			var b strings.Builder
			b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
			b.WriteString(`<ListBucketResult><IsTruncated>false</IsTruncated>`)
			for _, key := range s.keys {
				if strings.HasPrefix(key, prefix) {
					b.WriteString("<Contents><Key>" + key + "</Key></Contents>")
				}
			}
			b.WriteString("</ListBucketResult>")

			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(b.String()))

		case r.Method == http.MethodDelete:
			s.deletes = append(s.deletes, strings.TrimPrefix(r.URL.Path, "/bucket/"))
			w.WriteHeader(http.StatusNoContent)

		default:
			t.Errorf("unexpected object store request: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func (s *stubObjectStore) deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.deletes))
	copy(out, s.deletes)
	return out
}

func newStubService(t *testing.T, stub *stubObjectStore) StorageService {
	t.Helper()

	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	svc, err := NewStorageService(ServiceConfig{
		S3BucketName:      "bucket",
		S3Endpoint:        server.URL,
		S3AccessKeyID:     "test-access-key",
		S3SecretAccessKey: "test-secret-key",
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestPurgeRoomDeletesOnlyRoomKeys(t *testing.T) {
	stub := &stubObjectStore{keys: []string{
		"myroom/a.png",
		"myroom/b.mp4",
		"other/c.png",
	}}
	svc := newStubService(t, stub)

	n, err := svc.PurgeRoom(context.Background(), "myroom")
	if err != nil {
		t.Fatalf("PurgeRoom: %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeRoom deleted %d, want 2", n)
	}

	deleted := stub.deleted()
	if len(deleted) != 2 {
		t.Fatalf("store saw deletes %v, want the two myroom keys", deleted)
	}
	for _, key := range deleted {
		if !strings.HasPrefix(key, "myroom/") {
			t.Errorf("deleted key %q outside the room's namespace", key)
		}
	}
}

func TestPurgeRoomEmpty(t *testing.T) {
	stub := &stubObjectStore{}
	svc := newStubService(t, stub)

	n, err := svc.PurgeRoom(context.Background(), "myroom")
	if err != nil {
		t.Fatalf("PurgeRoom: %v", err)
	}
	if n != 0 {
		t.Errorf("PurgeRoom on an empty prefix deleted %d, want 0", n)
	}
	if len(stub.deleted()) != 0 {
		t.Errorf("store saw deletes %v, want none", stub.deleted())
	}
}

func TestPresignedURLsAreLocalAndScoped(t *testing.T) {
	stub := &stubObjectStore{}
	svc := newStubService(t, stub)

	upURL, err := svc.PresignUpload(context.Background(), "myroom/x.png", "image/png", 100, 5*time.Minute)
	if err != nil {
		t.Fatalf("PresignUpload: %v", err)
	}
	if !strings.Contains(upURL, "/bucket/myroom/x.png") || !strings.Contains(upURL, "X-Amz-Signature=") {
		t.Errorf("upload URL = %q, want a signed bucket/key URL", upURL)
	}

	downURL, err := svc.PresignDownload(context.Background(), "myroom/x.png", 5*time.Minute)
	if err != nil {
		t.Fatalf("PresignDownload: %v", err)
	}
	if !strings.Contains(downURL, "/bucket/myroom/x.png") || !strings.Contains(downURL, "X-Amz-Signature=") {
		t.Errorf("download URL = %q, want a signed bucket/key URL", downURL)
	}
}
