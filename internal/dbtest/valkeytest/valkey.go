package valkeytest

import (
	"context"
	"net"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/valkey-io/valkey-go"

	valkeycontainer "github.com/testcontainers/testcontainers-go/modules/valkey"
	slogctx "github.com/veqryn/slog-context"
)

// Start runs a ValKey container for the duration of the test and returns a
// client connected to it. The test is skipped when no container runtime is
// reachable.
func Start(t *testing.T) valkey.Client {
	t.Helper()

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{StartContainer(t)},
	})
	if err != nil {
		t.Fatalf("initialising valkey client: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}

// StartContainer runs a ValKey container for the duration of the test and
// returns its address.
func StartContainer(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	valkeyContainer, err := valkeycontainer.Run(ctx, "valkey/valkey:8-alpine")
	if err != nil {
		slogctx.Error(ctx, "Failed to start ValKey container", "error", err)
		t.Fatalf("starting valkey container: %v", err)
	}

	t.Cleanup(func() {
		if err := valkeyContainer.Terminate(context.Background()); err != nil {
			slogctx.Error(ctx, "Failed to terminate ValKey container", "error", err)
		}
	})

	port, err := valkeyContainer.MappedPort(ctx, nat.Port("6379"))
	if err != nil {
		t.Fatalf("mapping valkey port: %v", err)
	}

	return net.JoinHostPort("localhost", port.Port())
}
