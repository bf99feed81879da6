package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/firebase/genkit/go/ai"
)

// NOTE: LLM запросы/ответы удобно смотреть в Genkit DevUI:
// genkit start -- go run ./cmd serve

const maxRetryDelay = 30 * time.Second

// RetryMiddleware повторяет вызов модели с exponential backoff.
// Ошибки ключа и битый вывод не повторяются: результат будет тем же.
func RetryMiddleware(maxAttempts int, initialDelay time.Duration) ai.ModelMiddleware {
	return func(next ai.ModelFunc) ai.ModelFunc {
		return func(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
			var lastErr error

			for attempt := 1; attempt <= maxAttempts; attempt++ {
				resp, err := next(ctx, req, cb)
				if err == nil {
					if attempt > 1 {
						log.Printf("✅ LLM retry succeeded on attempt %d/%d", attempt, maxAttempts)
					}
					return resp, nil
				}

				lastErr = err

				if kind := Classify(err); !kind.Retryable() {
					log.Printf("❌ LLM error is not retryable (%s): %v", kind, err)
					return nil, err
				}

				if attempt == maxAttempts {
					log.Printf("❌ LLM: retries exhausted (%d/%d): %v", attempt, maxAttempts, err)
					break
				}

				// 1s → 2s → 4s, cap 30s
				delay := initialDelay * time.Duration(1<<uint(attempt-1))
				if delay > maxRetryDelay {
					delay = maxRetryDelay
				}

				log.Printf("⚠️ LLM error on attempt %d/%d: %v. Retrying in %v...",
					attempt, maxAttempts, err, delay)

				select {
				case <-ctx.Done():
					return nil, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
				case <-time.After(delay):
				}
			}

			return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
		}
	}
}
