package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aescanero/cloudedu/pkg/domain"
)

func TestLoadEmpty(t *testing.T) {
	store := NewInMemoryMessageStorage()

	messages, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", messages)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	store := NewInMemoryMessageStorage(domain.Message{ID: 1, Text: "a"})
	ctx := context.Background()

	messages, _ := store.Load(ctx)
	messages[0].Text = "mutated"

	again, _ := store.Load(ctx)
	if again[0].Text != "a" {
		t.Fatalf("store was mutated through a loaded slice: %+v", again[0])
	}
}

func TestUpdate(t *testing.T) {
	store := NewInMemoryMessageStorage()
	ctx := context.Background()

	err := store.Update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		return append(messages, domain.Message{ID: len(messages) + 1, Text: "x"}), nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	boom := errors.New("boom")
	err = store.Update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	messages, _ := store.Load(ctx)
	if len(messages) != 1 || messages[0].ID != 1 {
		t.Fatalf("unexpected messages %+v", messages)
	}
}

func TestSaveReplaces(t *testing.T) {
	store := NewInMemoryMessageStorage(domain.Message{ID: 1}, domain.Message{ID: 2})
	ctx := context.Background()

	if err := store.Save(ctx, []domain.Message{{ID: 9}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	messages, _ := store.Load(ctx)
	if len(messages) != 1 || messages[0].ID != 9 {
		t.Fatalf("unexpected messages %+v", messages)
	}
}
