// Package version exposes build information of the keyset binary.
//
// The variables are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ncobase/keyset/version.Version=v1.2.0 \
//	  -X github.com/ncobase/keyset/version.Branch=main"
package version
