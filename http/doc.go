// Package http provides a retrying request executor: it sends one logical
// request to an endpoint, retries transient failures with exponential
// backoff and returns either a decoded body or a single typed failure.
//
// Retries
//   - Controlled via Builder.WithRetries(maxRetries, retryDelay) or per request
//     through Request.MaxRetries. MaxRetries counts attempts and must be >= 1.
//   - Retried: transport timeouts and connection failures.
//   - Not retried: any response with status >= 400 (5xx included), bodies that
//     fail to decode, configuration errors and cancellation.
//
// Backoff Strategy
//   - delay = retryDelay * 2^attempt, attempt being the 0-based index of the
//     attempt that just failed. No jitter, no cap other than overflow protection.
//   - Server hints such as Retry-After are ignored.
//
// Lifecycle
//
//	Idle -> Attempting(n) -> Succeeded | Attempting(n+1) | Failed
//
// Every transition is reported to the configured Observers as an Event; the
// executor itself never logs. Use NewLoggingObserver or NewTracingObserver to
// turn events into log entries or spans.
//
// Notes
//   - Each attempt gets its own timeout; timeouts do not accumulate.
//   - Cancelling the caller's context aborts the current attempt or backoff
//     wait and yields a CancelledError.
//   - An executor is immutable once built and safe for concurrent use.
package http
