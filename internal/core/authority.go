package core

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// AuthorityResult is the outcome of a tax-authority call. A declined
// request is reported through Success=false, never through an error: errors
// are reserved for transport failures.
type AuthorityResult struct {
	Success           bool
	AuthorizationCode string
	Message           string
}

// TaxAuthority is the narrow interface to the external statutory service
// that authorizes and cancels invoices. Calls are synchronous blocking I/O
// and may fail; the protocol behind them is out of scope here.
type TaxAuthority interface {
	GenerateInvoice(ctx context.Context, inv *Invoice) (*AuthorityResult, error)
	CancelInvoice(ctx context.Context, inv *Invoice, reason string) (*AuthorityResult, error)
}

// RetryingAuthority wraps a TaxAuthority with a per-attempt timeout and
// bounded exponential backoff on transport errors. A declined result
// (Success=false) is returned as-is and never retried.
type RetryingAuthority struct {
	inner      TaxAuthority
	timeout    time.Duration
	maxRetries uint64
}

func NewRetryingAuthority(inner TaxAuthority, timeout time.Duration, maxRetries int) *RetryingAuthority {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingAuthority{inner: inner, timeout: timeout, maxRetries: uint64(maxRetries)}
}

func (a *RetryingAuthority) GenerateInvoice(ctx context.Context, inv *Invoice) (*AuthorityResult, error) {
	return a.call(ctx, func(attemptCtx context.Context) (*AuthorityResult, error) {
		return a.inner.GenerateInvoice(attemptCtx, inv)
	})
}

func (a *RetryingAuthority) CancelInvoice(ctx context.Context, inv *Invoice, reason string) (*AuthorityResult, error) {
	return a.call(ctx, func(attemptCtx context.Context) (*AuthorityResult, error) {
		return a.inner.CancelInvoice(attemptCtx, inv, reason)
	})
}

func (a *RetryingAuthority) call(ctx context.Context, fn func(context.Context) (*AuthorityResult, error)) (*AuthorityResult, error) {
	var result *AuthorityResult

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		res, err := fn(attemptCtx)
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), a.maxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}
