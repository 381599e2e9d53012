package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"impostor-server/enginerr"
	"impostor-server/game"
)

func TestNilStoreIsNoop(t *testing.T) {
	ctx := context.Background()
	var s *Store
	if err := s.SaveSession(ctx, Session{ID: "x"}); err != nil {
		t.Errorf("SaveSession: %v", err)
	}
	if _, err := s.LoadSession(ctx, "x"); !errors.Is(err, enginerr.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	logs, err := s.ListMatchLogs(ctx, "x", 10, 0)
	if err != nil || len(logs) != 0 {
		t.Errorf("ListMatchLogs = %v, %v", logs, err)
	}
	names, err := s.ListPlayerNames(ctx, "owner")
	if err != nil || len(names) != 0 {
		t.Errorf("ListPlayerNames = %v, %v", names, err)
	}
	s.Close()
}

func TestNewStoreWithoutURL(t *testing.T) {
	s, err := NewStore(context.Background(), "")
	if s != nil || err != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", s, err)
	}
}

func TestMemoryStoreSessionCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	h := game.NewHistory()
	h.RoundCounter = 4
	h.LastWords = []string{"Owl"}
	if err := m.SaveSession(ctx, Session{ID: "s1", OwnerID: "u1", Players: []game.Player{{ID: "a", Name: "Ana"}}, History: h}); err != nil {
		t.Fatal(err)
	}
	h.LastWords[0] = "changed"

	got, err := m.LoadSession(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.History.RoundCounter != 4 || got.History.LastWords[0] != "Owl" {
		t.Errorf("stored history not isolated: %+v", got.History.LastWords)
	}
	got.History.LastWords[0] = "mutated"
	again, _ := m.LoadSession(ctx, "s1")
	if again.History.LastWords[0] != "Owl" {
		t.Error("loaded session aliases the stored one")
	}
	if _, err := m.LoadSession(ctx, "missing"); !errors.Is(err, enginerr.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStoreListSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	for i := 0; i < 3; i++ {
		_ = m.SaveSession(ctx, Session{ID: fmt.Sprintf("s%d", i), OwnerID: "u1", History: game.NewHistory()})
	}
	_ = m.SaveSession(ctx, Session{ID: "other", OwnerID: "u2", History: game.NewHistory()})

	list, _ := m.ListSessions(ctx, "u1", 2)
	if len(list) != 2 || list[0].ID != "s2" || list[1].ID != "s1" {
		t.Errorf("unexpected listing %+v", list)
	}
}

func TestMemoryStoreMatchLogs(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for r := 1; r <= 5; r++ {
		_ = m.UpsertMatchLog(ctx, "s1", game.MatchLog{ID: fmt.Sprintf("m%d", r), Round: r})
	}
	_ = m.UpsertMatchLog(ctx, "s1", game.MatchLog{ID: "m5", Round: 5, Outcome: game.OutcomeCivilians})

	logs, _ := m.ListMatchLogs(ctx, "s1", 2, 0)
	if len(logs) != 2 || logs[0].Round != 5 || logs[1].Round != 4 {
		t.Fatalf("unexpected page %+v", logs)
	}
	if logs[0].Outcome != game.OutcomeCivilians {
		t.Error("upsert should replace the existing log")
	}
	logs, _ = m.ListMatchLogs(ctx, "s1", 10, 4)
	if len(logs) != 1 || logs[0].Round != 1 {
		t.Errorf("unexpected offset page %+v", logs)
	}
	if logs, _ := m.ListMatchLogs(ctx, "s1", 10, 9); len(logs) != 0 {
		t.Errorf("offset past end should be empty, got %d", len(logs))
	}
}

func TestMemoryStorePlayerNames(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.SavePlayerNames(ctx, "u1", []string{"Ana", "Ben", " ", "ana"})
	_ = m.SavePlayerNames(ctx, "u1", []string{"Cleo", "Ben"})
	_ = m.SavePlayerNames(ctx, "", []string{"Nobody"})

	names, _ := m.ListPlayerNames(ctx, "u1")
	if fmt.Sprint(names) != "[Cleo Ben Ana]" {
		t.Errorf("names = %v", names)
	}
	if names, _ := m.ListPlayerNames(ctx, ""); len(names) != 0 {
		t.Errorf("anonymous names saved: %v", names)
	}
}
