package presence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func exerciseRegistry(t *testing.T, reg Registry) {
	t.Helper()
	ctx := context.Background()

	if err := reg.SetUserSocket(ctx, "user-1", "sock-a"); err != nil {
		t.Fatalf("set user socket: %v", err)
	}
	if err := reg.SetUserSocket(ctx, "user-1", "sock-b"); err != nil {
		t.Fatalf("set user socket: %v", err)
	}
	socketID, ok, err := reg.UserSocket(ctx, "user-1")
	if err != nil || !ok || socketID != "sock-b" {
		t.Fatalf("expected latest socket sock-b, got %q ok=%v err=%v", socketID, ok, err)
	}

	// Closing the stale socket must not drop the live mapping.
	if _, _, err := reg.RemoveSocket(ctx, "sock-a"); err != nil {
		t.Fatalf("remove stale socket: %v", err)
	}
	if socketID, ok, _ := reg.UserSocket(ctx, "user-1"); !ok || socketID != "sock-b" {
		t.Fatalf("expected sock-b to survive, got %q ok=%v", socketID, ok)
	}

	info := AgentInfo{AgentID: "AGENT-ABC123", Name: "Jane", SocketID: "sock-agent", ConnectedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := reg.SetAgent(ctx, info); err != nil {
		t.Fatalf("set agent: %v", err)
	}
	got, ok, err := reg.Agent(ctx, "sock-agent")
	if err != nil || !ok || got.AgentID != info.AgentID || got.Name != "Jane" {
		t.Fatalf("unexpected agent lookup %#v ok=%v err=%v", got, ok, err)
	}
	if socketID, ok, _ := reg.AgentSocket(ctx, info.AgentID); !ok || socketID != "sock-agent" {
		t.Fatalf("expected agent socket, got %q ok=%v", socketID, ok)
	}

	removed, wasAgent, err := reg.RemoveSocket(ctx, "sock-agent")
	if err != nil || !wasAgent || removed.AgentID != info.AgentID {
		t.Fatalf("expected agent removal, got %#v wasAgent=%v err=%v", removed, wasAgent, err)
	}
	if _, ok, _ := reg.AgentSocket(ctx, info.AgentID); ok {
		t.Fatal("expected agent socket to be forgotten")
	}

	if _, wasAgent, _ := reg.RemoveSocket(ctx, "sock-b"); wasAgent {
		t.Fatal("user socket must not report an agent")
	}
	if _, ok, _ := reg.UserSocket(ctx, "user-1"); ok {
		t.Fatal("expected user mapping to be removed")
	}
}

func TestMemoryRegistry(t *testing.T) {
	exerciseRegistry(t, NewMemoryRegistry())
}

func TestRedisRegistry(t *testing.T) {
	addr := os.Getenv("PRESENCE_TEST_REDIS")
	if addr == "" {
		t.Skip("PRESENCE_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	exerciseRegistry(t, NewRedisRegistry(client, time.Minute))
}
