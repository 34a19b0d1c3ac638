// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// The SecureHandler masks:
//   - attributes whose key names a credential (Authorization, api_key,
//     stripe_key, webhook_secret, session ids)
//   - values that look like secrets (JWTs, bearer and basic credentials,
//     Stripe secret and webhook keys, AWS access keys, PEM private keys)
//   - signature and token query parameters inside logged URLs, so that a
//     signed asset URL can be logged without leaking its credentials
//
// Even in verbose mode, sensitive values are masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("fix applied",
//	    "url", "https://cdn.example.com/a.jpg?X-Amz-Signature=abc", // signature masked
//	    "api_key", "sk_live_...",                                  // masked
//	)
package log
