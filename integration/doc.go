// Package integration contains integration tests that exercise the registry
// client against a real OCI registry container.
//
// The tests are gated behind the "integration" build tag and require Docker:
//
//	go test -tags integration ./integration/...
//
// Set SKIP_DOCKER_TESTS=1 to skip them in environments without Docker.
package integration
