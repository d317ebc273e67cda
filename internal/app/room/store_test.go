package room

import (
	"testing"
	"time"

	"fadechat/internal/app/user"
)

// fakeClock is a settable time source for store tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl)
	s.now = clock.now
	return s, clock
}

func TestCreateAndStat(t *testing.T) {
	s, clock := newTestStore(24 * time.Hour)

	st := s.Create("abc123")

	if st.RoomID != "abc123" {
		t.Errorf("RoomID = %q, want %q", st.RoomID, "abc123")
	}
	if st.TimeLeft != 24*time.Hour {
		t.Errorf("TimeLeft = %v, want %v", st.TimeLeft, 24*time.Hour)
	}
	if !st.ExpiresAt.Equal(clock.t.Add(24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", st.ExpiresAt, clock.t.Add(24*time.Hour))
	}

	got, ok := s.Stat("abc123")
	if !ok {
		t.Fatal("Stat returned ok=false for a live room")
	}
	if got.UserCount != 0 || got.MessageCount != 0 {
		t.Errorf("fresh room has UserCount=%d MessageCount=%d, want 0/0", got.UserCount, got.MessageCount)
	}
}

func TestStatUnknownRoom(t *testing.T) {
	s, _ := newTestStore(24 * time.Hour)

	if _, ok := s.Stat("missing"); ok {
		t.Error("Stat returned ok=true for a room that was never created")
	}
}

func TestTTLNotExtendedByActivity(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Create("r")

	clock.advance(30 * time.Minute)
	s.UpsertUser("r", user.User{Nickname: "alice", JoinedAt: clock.t})
	s.AppendMessage("r", Message{ID: "m1", Nickname: "alice", Content: "hi", Kind: KindText})

	if got := s.TimeLeft("r"); got != 30*time.Minute {
		t.Errorf("TimeLeft after activity = %v, want %v", got, 30*time.Minute)
	}
}

func TestLazyEvictionOnRead(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Create("r")

	// One nanosecond before the deadline the room is alive.
	clock.advance(time.Hour - time.Nanosecond)
	if !s.Exists("r") {
		t.Fatal("room evicted before its TTL elapsed")
	}

	// Exactly at the deadline it is expired.
	clock.advance(time.Nanosecond)
	if s.Exists("r") {
		t.Error("room still alive exactly at its expiry instant")
	}
	if s.Len() != 0 {
		t.Errorf("entry count after eviction = %d, want 0", s.Len())
	}
}

func TestMutationsFailOnExpiredRoom(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Create("r")
	clock.advance(2 * time.Hour)

	if s.UpsertUser("r", user.User{Nickname: "alice"}) {
		t.Error("UpsertUser succeeded on an expired room")
	}
	if s.AppendMessage("r", Message{Content: "hi", Kind: KindText}) {
		t.Error("AppendMessage succeeded on an expired room")
	}
	if s.RemoveUser("r", "alice") {
		t.Error("RemoveUser succeeded on an expired room")
	}
	if got := s.TimeLeft("r"); got != 0 {
		t.Errorf("TimeLeft on expired room = %v, want 0", got)
	}
}

func TestCreateOverwritesExisting(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Create("r")
	s.UpsertUser("r", user.User{Nickname: "alice"})
	s.AppendMessage("r", Message{ID: "m1", Content: "hi", Kind: KindText})

	clock.advance(30 * time.Minute)
	st := s.Create("r")

	if st.UserCount != 0 || st.MessageCount != 0 {
		t.Errorf("recreated room kept UserCount=%d MessageCount=%d", st.UserCount, st.MessageCount)
	}
	if got := s.TimeLeft("r"); got != time.Hour {
		t.Errorf("TimeLeft after recreation = %v, want a full TTL of %v", got, time.Hour)
	}
}

func TestUpsertUserReplacesSameNickname(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Create("r")

	first := user.User{Nickname: "alice", JoinedAt: clock.t}
	s.UpsertUser("r", first)

	clock.advance(time.Minute)
	second := user.User{Nickname: "alice", JoinedAt: clock.t}
	s.UpsertUser("r", second)
	s.UpsertUser("r", user.User{Nickname: "bob", JoinedAt: clock.t})

	users := s.Users("r")
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2: %+v", len(users), users)
	}
	if users[0].Nickname != "alice" || !users[0].JoinedAt.Equal(second.JoinedAt) {
		t.Errorf("upsert did not replace the existing alice entry: %+v", users[0])
	}
	if users[1].Nickname != "bob" {
		t.Errorf("users[1] = %+v, want bob", users[1])
	}
}

func TestRemoveUser(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	s.Create("r")
	s.UpsertUser("r", user.User{Nickname: "alice"})
	s.UpsertUser("r", user.User{Nickname: "bob"})

	if !s.RemoveUser("r", "alice") {
		t.Fatal("RemoveUser returned false for a live room")
	}

	users := s.Users("r")
	if len(users) != 1 || users[0].Nickname != "bob" {
		t.Errorf("users after removal = %+v, want only bob", users)
	}
}

func TestAppendMessageCounts(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	s.Create("r")

	for i := 0; i < 3; i++ {
		if !s.AppendMessage("r", Message{Content: "hi", Kind: KindText}) {
			t.Fatalf("AppendMessage %d failed", i)
		}
	}

	st, _ := s.Stat("r")
	if st.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", st.MessageCount)
	}
}

func TestSweepExpired(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Create("old1")
	s.Create("old2")

	clock.advance(30 * time.Minute)
	s.Create("young")

	clock.advance(30 * time.Minute)
	evicted := s.SweepExpired()

	if len(evicted) != 2 {
		t.Fatalf("SweepExpired evicted %v, want old1 and old2", evicted)
	}
	seen := map[string]bool{}
	for _, id := range evicted {
		seen[id] = true
	}
	if !seen["old1"] || !seen["old2"] {
		t.Errorf("SweepExpired evicted %v, want old1 and old2", evicted)
	}
	if !s.Exists("young") {
		t.Error("sweep evicted a room whose TTL had not elapsed")
	}
	if s.Len() != 1 {
		t.Errorf("entry count after sweep = %d, want 1", s.Len())
	}
}
