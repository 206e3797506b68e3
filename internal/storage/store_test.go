package storage

import (
	"database/sql"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateSession(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession("ABC123", 4); err != nil {
		t.Fatalf("create session: %v", err)
	}
	// Duplicate code should error
	if err := s.CreateSession("ABC123", 4); err == nil {
		t.Fatal("expected error on duplicate code")
	}
}

func TestGetSession(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("ABC123", 3)

	row, err := s.GetSession("ABC123")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if row.Code != "ABC123" {
		t.Fatalf("expected code ABC123, got %s", row.Code)
	}
	if row.Mode != 3 {
		t.Fatalf("expected mode 3, got %d", row.Mode)
	}
	if row.Status != "waiting" {
		t.Fatalf("expected status waiting, got %s", row.Status)
	}
	if row.CreatedAt.IsZero() {
		t.Fatal("expected non-zero CreatedAt")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSession("NOPE")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateSessionStatus(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("ABC123", 4)

	if err := s.UpdateSessionStatus("ABC123", "playing"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	row, err := s.GetSession("ABC123")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if row.Status != "playing" {
		t.Fatalf("expected playing, got %s", row.Status)
	}
}

func TestListSessionsAll(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("AAAAAA", 2)
	s.CreateSession("BBBBBB", 3)
	s.CreateSession("CCCCCC", 4)

	rows, err := s.ListSessions("")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(rows))
	}
}

func TestListSessionsFiltered(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("AAAAAA", 4)
	s.CreateSession("BBBBBB", 4)
	s.UpdateSessionStatus("BBBBBB", "playing")

	rows, err := s.ListSessions("waiting")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 waiting session, got %d", len(rows))
	}
	if rows[0].Code != "AAAAAA" {
		t.Fatalf("expected code AAAAAA, got %s", rows[0].Code)
	}
}

func TestSaveAndGetGameState(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("ABC123", 4)

	stateJSON := `{"phase":"BIDDING","seq":3,"dealer_seat":1}`
	if err := s.SaveGameState("ABC123", stateJSON); err != nil {
		t.Fatalf("save game state: %v", err)
	}
	got, err := s.GetGameState("ABC123")
	if err != nil {
		t.Fatalf("get game state: %v", err)
	}
	if got != stateJSON {
		t.Fatalf("expected %s, got %s", stateJSON, got)
	}
}

func TestSaveGameStateUpsert(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("ABC123", 4)

	s.SaveGameState("ABC123", `{"seq":1}`)
	s.SaveGameState("ABC123", `{"seq":2}`)

	got, err := s.GetGameState("ABC123")
	if err != nil {
		t.Fatalf("get game state: %v", err)
	}
	if got != `{"seq":2}` {
		t.Fatalf("expected upserted value, got %s", got)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	s.CreateSession("ABC123", 4)
	s.SaveGameState("ABC123", `{"seq":1}`)

	if err := s.DeleteSession("ABC123"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	_, err := s.GetSession("ABC123")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows after delete, got %v", err)
	}
	_, err = s.GetGameState("ABC123")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows for game state after delete, got %v", err)
	}
}

func TestGetGameStateNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetGameState("NOPE")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
