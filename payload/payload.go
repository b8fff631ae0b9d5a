// Package payload carries the application archive compiled into the binary.
//
// The archive is a zip of the app/ directory. Rebuild it after changing
// the sources:
//
//	go run ./internal/tools/pack payload/app payload/payload.zip
package payload

import (
	_ "embed"
)

// Archive is the bundled application archive. The shim registers it under
// the alias from its manifest and mounts it read-only in the guest.
//
//go:embed payload.zip
var Archive []byte
