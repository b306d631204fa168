package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", time.Hour)
	ctx := context.Background()

	msg := domain.Message{
		ID:      "msg-1",
		ChatID:  "chat-1",
		Content: "cached hello",
		Type:    domain.MessageText,
	}
	if err := c.SetMessage(ctx, msg); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.GetMessage(ctx, "msg-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != msg.Content || got.ChatID != msg.ChatID {
		t.Fatalf("unexpected cached message: %+v", got)
	}

	if err := c.DeleteMessage(ctx, "msg-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetMessage(ctx, "msg-1"); err != ErrMiss {
		t.Fatalf("expected ErrMiss after delete, got %v", err)
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", time.Minute)
	ctx := context.Background()

	if err := c.SetMessage(ctx, domain.Message{ID: "msg-1", Content: "short-lived"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := c.GetMessage(ctx, "msg-1"); err != ErrMiss {
		t.Fatalf("expected ErrMiss after expiry, got %v", err)
	}
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := NoopCache{}
	ctx := context.Background()
	if err := c.SetMessage(ctx, domain.Message{ID: "x"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := c.GetMessage(ctx, "x"); err != ErrMiss {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}
