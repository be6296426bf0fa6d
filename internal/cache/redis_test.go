package cache

import (
	"os"
	"testing"
)

func TestNewRedisClient_Ping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := NewRedisClient(addr, "", 15)
	if err != nil {
		t.Skipf("skipping redis test, cannot connect: %v", err)
	}
	defer client.Close()
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dial test in short mode")
	}
	if _, err := NewRedisClient("127.0.0.1:1", "", 0); err == nil {
		t.Fatalf("expected connect error")
	}
}
