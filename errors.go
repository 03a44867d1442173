package chartpipe

import (
	"errors"

	"github.com/finsight/chartpipe/internal/queue"
)

// ErrAdmissionRejected reports a request refused outright because the queue
// sat at its hard capacity bound. The caller should back off and retry.
var ErrAdmissionRejected = errors.New("chartpipe: request rejected, queue at capacity")

// ErrQueueTimeout matches (via errors.Is) requests that waited in the queue
// past the configured bound without being picked up.
var ErrQueueTimeout = queue.ErrTimeout

// ErrClosed reports use of a pipeline after Close.
var ErrClosed = errors.New("chartpipe: pipeline is closed")

// TimeoutError is the concrete queue-timeout error; it carries how long the
// request waited.
type TimeoutError = queue.TimeoutError
