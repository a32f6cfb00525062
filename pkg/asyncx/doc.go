// Package asyncx provides the small set of concurrency helpers the service
// layer relies on for outbound calls: bounded timeouts, settled fan-out and
// retries with exponential backoff, all with first-class context support.
//
// # Timeouts
//
// [WithTimeout] bounds a call to a collaborator. The callee receives a
// derived context so well-behaved clients abort their own I/O:
//
//	_, err := asyncx.WithTimeout(ctx, 8*time.Second, func(ctx context.Context) (struct{}, error) {
//	    return struct{}{}, mailer.SendOTP(ctx, email, code)
//	})
//
// # Fan-out
//
// [AllSettled] runs several functions concurrently and always returns one
// [Result] per function, which suits best-effort sinks where one failure must
// not hide the others.
//
// # Retries
//
// [RetryWithBackoff] retries transient failures, doubling the delay between
// attempts. Wrap an error in [Permanent] to stop early.
package asyncx
