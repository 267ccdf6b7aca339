//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meigma/gma"
	"github.com/meigma/gma/registry"
	"github.com/meigma/gma/registry/oras"
)

// --- Registry Container Setup ---

var (
	registryOnce sync.Once
	registryAddr string
	registryErr  error
)

// getRegistry returns the shared registry address, starting the container if
// needed. The container is shared across all tests for performance.
func getRegistry(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	registryOnce.Do(func() {
		ctx := context.Background()
		registryAddr, registryErr = startRegistryContainer(ctx)
	})

	if registryErr != nil {
		tb.Fatalf("start registry container: %v", registryErr)
	}

	return registryAddr
}

// startRegistryContainer starts a registry:2 container and returns the
// host:port address.
func startRegistryContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "registry:2",
		ExposedPorts: []string{"5000/tcp"},
		WaitingFor:   wait.ForHTTP("/v2/").WithPort("5000/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry container: %w", err)
	}

	// Container cleanup is handled by the testcontainers Reaper.

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve registry host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5000/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve registry port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// --- Test Client Factory ---

// newTestClient creates a client configured for the local test registry.
func newTestClient(tb testing.TB, opts ...registry.Option) *registry.Client {
	tb.Helper()

	// Always use plain HTTP and no credentials for the local registry.
	allOpts := append([]registry.Option{
		registry.WithOrasOptions(oras.WithPlainHTTP(true), oras.WithAnonymous()),
	}, opts...)

	return registry.New(allOpts...)
}

// --- Test Reference Helpers ---

// testRef generates a unique reference for a test to avoid collisions.
func testRef(registryAddr, testName string) string {
	return testRefWithTag(registryAddr, testName, "latest")
}

// testRefWithTag generates a reference with a specific tag.
func testRefWithTag(registryAddr, testName, tag string) string {
	return fmt.Sprintf("%s/addons/%s:%s", registryAddr, testName, tag)
}

// --- Test Data Helpers ---

// buildArchive creates a deterministic archive with the given files.
func buildArchive(tb testing.TB, title string, files map[string]string) *gma.Builder {
	tb.Helper()

	b := gma.NewBuilder(title, 76561198000000001)
	require.NoError(tb, b.SetAuthor("integration"))
	b.SetTimestamp(time.Unix(1700000000, 0))
	for path, content := range files {
		require.NoError(tb, b.FileFromString(path, content))
	}
	return b
}

// smallAddon is a simple flat addon with 3 small files.
var smallAddon = map[string]string{
	"lua/autorun/init.lua":  "print(\"hello\")\n",
	"lua/includes/util.lua": "return function() end\n",
	"addon.txt":             "a test addon",
}

// nestedAddon contains nested directories and an empty file.
var nestedAddon = map[string]string{
	"lua/autorun/client/cl_init.lua": "-- client init",
	"lua/autorun/server/sv_init.lua": "-- server init",
	"materials/models/thing.vmt":     "\"VertexLitGeneric\" {}",
	"materials/models/thing.vtf":     "",
}

// --- Assertion Helpers ---

// assertFilesMatch verifies that an archive contains the expected files with
// correct content.
func assertFilesMatch(tb testing.TB, a *gma.Archive, expected map[string]string) {
	tb.Helper()

	require.Equal(tb, len(expected), a.Len(), "archive entry count")
	for path, content := range expected {
		got, err := a.ReadFile(path)
		require.NoError(tb, err, "ReadFile(%q)", path)
		require.Equal(tb, []byte(content), got, "content mismatch for %q", path)
	}
}
