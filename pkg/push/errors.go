package push

import "errors"

var (
	// ErrUnknownSource is returned for a source name other than
	// "channel" or "nats".
	ErrUnknownSource = errors.New("unknown push source")

	errUnknownTransport  = errors.New("unknown push transport")
	errUnsupportedScheme = errors.New("unsupported origin scheme")
	errUnexpectedStatus  = errors.New("unexpected status code")
	errMissingEvent      = errors.New("push envelope missing event name")
	errChannelClosed     = errors.New("push channel closed")
)
