package symstash

import (
	"errors"

	"github.com/aweris/symstash/internal/remote"
	"github.com/aweris/symstash/internal/sdk"
	"github.com/aweris/symstash/internal/store"
)

var (
	// ErrUnknownSDK is returned when an identity is not recorded in the local state.
	ErrUnknownSDK = errors.New("symstash: unknown sdk")

	// ErrUnavailable is returned when the catalog cannot be reached.
	ErrUnavailable = remote.ErrUnavailable

	// ErrCorruptState is returned when sync.state exists but cannot be parsed.
	ErrCorruptState = store.ErrCorruptState

	// ErrInvalidIdentifier is returned when text does not parse as an SDK id.
	ErrInvalidIdentifier = sdk.ErrInvalidIdentifier
)
