package poller

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDuration = fmt.Errorf("invalid duration")

	errNilConfig   = errors.New("config is required")
	errNilFetcher  = errors.New("fetcher is required")
	errNilSink     = errors.New("sink is required")
	errPartialPoll = errors.New("poll cycle had failures")
)
