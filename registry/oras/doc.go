// Package oras provides a low-level OCI client wrapping the ORAS library.
//
// Client exposes format-agnostic registry operations (blob and manifest
// push/fetch, tag, resolve) with shared token-cached authentication. The
// higher-level registry package builds addon-archive semantics on top of it.
package oras
