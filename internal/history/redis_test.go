package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/internal/history"
	"github.com/closetmind/assistant/pkg/models"
)

func newRedisStore(t *testing.T, maxTurns int, ttl time.Duration) (*history.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := history.NewRedisStore(config.RedisConfig{
		Addr:       mr.Addr(),
		HistoryTTL: ttl,
		MaxTurns:   maxTurns,
	})
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_AppendAndTurns(t *testing.T) {
	s, _ := newRedisStore(t, 100, time.Hour)
	ctx := context.Background()

	if err := s.Append(ctx, 42, models.ChatTurn{Role: models.RoleUser, Content: "find jeans", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := s.Append(ctx, 42, models.ChatTurn{Role: models.RoleAssistant, Content: "here you go", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	turns, err := s.Turns(ctx, 42)
	if err != nil {
		t.Fatalf("Turns() error: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Turns() returned %d turns, want 2", len(turns))
	}
	if turns[0].Content != "find jeans" || turns[1].Content != "here you go" {
		t.Errorf("turns out of order: %v", turns)
	}
}

func TestRedisStore_TrimsToMaxTurns(t *testing.T) {
	s, _ := newRedisStore(t, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		turn := models.ChatTurn{Role: models.RoleUser, Content: fmt.Sprintf("turn %d", i)}
		if err := s.Append(ctx, 7, turn); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	turns, err := s.Turns(ctx, 7)
	if err != nil {
		t.Fatalf("Turns() error: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("Turns() returned %d turns, want 3 (trimmed)", len(turns))
	}
	if turns[0].Content != "turn 2" || turns[2].Content != "turn 4" {
		t.Errorf("kept the wrong window: %v", turns)
	}
}

func TestRedisStore_TTLRefreshed(t *testing.T) {
	s, mr := newRedisStore(t, 100, time.Hour)
	ctx := context.Background()

	if err := s.Append(ctx, 9, models.ChatTurn{Role: models.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if ttl := mr.TTL("chat:9:turns"); ttl != time.Hour {
		t.Errorf("TTL = %v, want %v", ttl, time.Hour)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	s, _ := newRedisStore(t, 100, time.Hour)
	ctx := context.Background()

	if err := s.Append(ctx, 5, models.ChatTurn{Role: models.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := s.Clear(ctx, 5); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	turns, err := s.Turns(ctx, 5)
	if err != nil {
		t.Fatalf("Turns() error: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Turns() after Clear returned %d turns, want 0", len(turns))
	}
}

func TestRedisStore_EmptyChat(t *testing.T) {
	s, _ := newRedisStore(t, 100, time.Hour)

	turns, err := s.Turns(context.Background(), 404)
	if err != nil {
		t.Fatalf("Turns() on empty chat error: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Turns() returned %d turns, want 0", len(turns))
	}
}
