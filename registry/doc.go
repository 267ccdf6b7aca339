// Package registry provides a high-level client for pushing and pulling
// GMA addon archives to/from OCI registries.
//
// Archives are stored as OCI 1.1 artifacts: an empty JSON config plus a
// single archive layer, optionally zstd-compressed for transport. The
// client uses the oras subpackage for low-level OCI operations and adds
// addon-specific functionality like manifest annotations, reference and
// archive caching, and digest verification on pull.
package registry
