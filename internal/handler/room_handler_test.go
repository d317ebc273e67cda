package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fadechat/internal/app/relay"
	"fadechat/internal/app/room"
	"fadechat/internal/configs"
)

func testDeps() *AppDeps {
	return testDepsWithTTL(24 * time.Hour)
}

func testDepsWithTTL(ttl time.Duration) *AppDeps {
	store := room.NewStore(ttl)

	return &AppDeps{
		Relay: relay.New(store),
		Store: store,
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			RoomTTL:     ttl,
		},
	}
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, payload
}

func TestHealthEndpoint(t *testing.T) {
	router := Router(testDeps())

	rec, payload := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
	if payload["status"] != "ok" {
		t.Errorf("health payload = %v", payload)
	}
}

func TestRoomStatusUnknownRoom(t *testing.T) {
	router := Router(testDeps())

	rec, payload := doJSON(t, router, http.MethodGet, "/room/nosuch", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /room/nosuch = %d, want 404", rec.Code)
	}
	if payload["error"] != "Room not found or expired" {
		t.Errorf("error body = %v", payload)
	}
}

func TestRoomStatusLiveRoom(t *testing.T) {
	deps := testDeps()
	router := Router(deps)
	deps.Store.Create("myroom")

	rec, payload := doJSON(t, router, http.MethodGet, "/room/myroom", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /room/myroom = %d, want 200", rec.Code)
	}
	if payload["roomId"] != "myroom" {
		t.Errorf("roomId = %v", payload["roomId"])
	}
	if tl, ok := payload["timeLeft"].(float64); !ok || tl <= 0 || tl > 86400 {
		t.Errorf("timeLeft = %v, want (0, 86400]", payload["timeLeft"])
	}
	if payload["userCount"].(float64) != 0 || payload["messageCount"].(float64) != 0 {
		t.Errorf("fresh room counts = %v", payload)
	}
}

func TestCreateRoomWithGeneratedID(t *testing.T) {
	deps := testDeps()
	router := Router(deps)

	rec, payload := doJSON(t, router, http.MethodPost, "/room", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /room = %d, want 200", rec.Code)
	}

	roomID, _ := payload["roomId"].(string)
	if len(roomID) != 8 {
		t.Errorf("generated roomId = %q, want 8 characters", roomID)
	}
	if payload["created"] != true {
		t.Errorf("created = %v, want true", payload["created"])
	}
	if !deps.Store.Exists(roomID) {
		t.Error("generated room does not exist in the store")
	}
}

func TestEnsureRoomCreatesOnce(t *testing.T) {
	deps := testDeps()
	router := Router(deps)

	rec, _ := doJSON(t, router, http.MethodPost, "/room/chosen1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first POST /room/chosen1 = %d, want 200", rec.Code)
	}

	// A second ensure must not reset the room.
	deps.Store.AppendMessage("chosen1", room.Message{Content: "hi", Kind: room.KindText})

	rec, _ = doJSON(t, router, http.MethodPost, "/room/chosen1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second POST /room/chosen1 = %d, want 200", rec.Code)
	}

	st, ok := deps.Store.Stat("chosen1")
	if !ok {
		t.Fatal("room vanished after second ensure")
	}
	if st.MessageCount != 1 {
		t.Errorf("second ensure reset the room: MessageCount = %d, want 1", st.MessageCount)
	}
}

func TestEnsureRoomRejectsOverlongID(t *testing.T) {
	router := Router(testDeps())

	longID := strings.Repeat("a", 65)
	rec, _ := doJSON(t, router, http.MethodPost, "/room/"+longID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST with a 65-char roomId = %d, want 400", rec.Code)
	}
}

func TestCreateRoomRateLimited(t *testing.T) {
	router := Router(testDeps())

	var got429 bool
	for i := 0; i < CreateBurst+1; i++ {
		rec, _ := doJSON(t, router, http.MethodPost, "/room", nil)
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
		}
	}

	if !got429 {
		t.Errorf("%d rapid creates were all admitted despite a burst of %d", CreateBurst+1, CreateBurst)
	}
}

func TestPresignUploadDisabledWithoutStorage(t *testing.T) {
	deps := testDeps()
	router := Router(deps)
	deps.Store.Create("myroom")

	body, _ := json.Marshal(PresignUploadInput{FileName: "a.png", MimeType: "image/png", FileSize: 100})
	rec, payload := doJSON(t, router, http.MethodPost, "/room/myroom/attachments/presign", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("presign without storage = %d, want 404", rec.Code)
	}
	if payload["error"] != "Attachments are not enabled on this relay." {
		t.Errorf("error body = %v", payload)
	}
}

// fakeStorage scripts presigned URLs without an object store.
type fakeStorage struct {
	uploads   []string
	downloads []string
}

func (f *fakeStorage) PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, d time.Duration) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://store.example/" + key + "?sig=up", nil
}

func (f *fakeStorage) PresignDownload(ctx context.Context, key string, d time.Duration) (string, error) {
	f.downloads = append(f.downloads, key)
	return "https://store.example/" + key + "?sig=down", nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func (f *fakeStorage) PurgeRoom(ctx context.Context, roomID string) (int, error) {
	return 0, nil
}

func TestPresignUpload(t *testing.T) {
	deps := testDeps()
	storage := &fakeStorage{}
	deps.StorageService = storage
	router := Router(deps)
	deps.Store.Create("myroom")

	body, _ := json.Marshal(PresignUploadInput{FileName: "cat.jpg", MimeType: "image/jpeg", FileSize: 1024})
	rec, payload := doJSON(t, router, http.MethodPost, "/room/myroom/attachments/presign", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("presign upload = %d, want 200: %v", rec.Code, payload)
	}

	fileKey, _ := payload["fileKey"].(string)
	if !strings.HasPrefix(fileKey, "myroom/") || !strings.HasSuffix(fileKey, ".jpg") {
		t.Errorf("fileKey = %q, want a room-scoped .jpg key", fileKey)
	}
	if payload["kind"] != string(room.KindImage) {
		t.Errorf("kind = %v, want %q", payload["kind"], room.KindImage)
	}
	if fileURL, _ := payload["fileUrl"].(string); !strings.HasPrefix(fileURL, "/attachments?roomId=myroom") {
		t.Errorf("fileUrl = %q, want a download-endpoint reference", fileURL)
	}
	if len(storage.uploads) != 1 || storage.uploads[0] != fileKey {
		t.Errorf("storage saw uploads %v, want [%s]", storage.uploads, fileKey)
	}
}

func TestPresignUploadRejectsBadFile(t *testing.T) {
	deps := testDeps()
	deps.StorageService = &fakeStorage{}
	router := Router(deps)
	deps.Store.Create("myroom")

	cases := []PresignUploadInput{
		{FileName: "doc.pdf", MimeType: "application/pdf", FileSize: 100},
		{FileName: "cat.jpg", MimeType: "image/jpeg", FileSize: room.MaxAttachmentSize + 1},
		{FileName: "cat.jpg", MimeType: "image/jpeg", FileSize: 0},
	}
	for _, input := range cases {
		body, _ := json.Marshal(input)
		rec, _ := doJSON(t, router, http.MethodPost, "/room/myroom/attachments/presign", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("presign %+v = %d, want 400", input, rec.Code)
		}
	}
}

func TestPresignUploadUnknownRoom(t *testing.T) {
	deps := testDeps()
	deps.StorageService = &fakeStorage{}
	router := Router(deps)

	body, _ := json.Marshal(PresignUploadInput{FileName: "cat.jpg", MimeType: "image/jpeg", FileSize: 100})
	rec, _ := doJSON(t, router, http.MethodPost, "/room/nosuch/attachments/presign", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("presign for unknown room = %d, want 404", rec.Code)
	}
}

func TestPresignDownloadScopedToRoom(t *testing.T) {
	deps := testDeps()
	storage := &fakeStorage{}
	deps.StorageService = storage
	router := Router(deps)

	rec, _ := doJSON(t, router, http.MethodGet, "/attachments?roomId=myroom&k=myroom%2Fabc.jpg", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("download presign = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "myroom/abc.jpg") {
		t.Errorf("redirect location = %q", loc)
	}

	// A key outside the room's namespace must not presign.
	rec, _ = doJSON(t, router, http.MethodGet, "/attachments?roomId=myroom&k=other%2Fabc.jpg", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cross-room download key = %d, want 400", rec.Code)
	}
}
