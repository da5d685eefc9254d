package providers

import "time"

// defaultRetryDelay is the base linear backoff delay shared by every
// hosted provider's retry loop.
const defaultRetryDelay = time.Second
