package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Timeout:    1 * time.Second,
	}
}

func TestWithRetrySuccess(t *testing.T) {
	callCount := 0
	result, err := WithRetry(context.Background(), testConfig(), func(ctx context.Context) (string, error) {
		callCount++
		return "success", nil
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetrySuccessAfterRetries(t *testing.T) {
	callCount := 0
	result, err := WithRetry(context.Background(), testConfig(), func(ctx context.Context) (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary failure")
		}
		return "success", nil
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetryFailureAfterMaxRetries(t *testing.T) {
	config := testConfig()
	config.MaxRetries = 2

	callCount := 0
	_, err := WithRetry(context.Background(), config, func(ctx context.Context) (string, error) {
		callCount++
		return "", errors.New("persistent failure")
	})
	if err == nil {
		t.Fatal("Expected an error after exhausting retries")
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetryRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(ctx, testConfig(), func(ctx context.Context) (int, error) {
		return 0, errors.New("should not matter")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBackoffDelayBounded(t *testing.T) {
	base := 10 * time.Millisecond
	max := 100 * time.Millisecond
	for attempt := 0; attempt < 40; attempt++ {
		delay := backoffDelay(attempt, base, max)
		if delay < 0 || delay > max {
			t.Errorf("Attempt %d: delay %v outside [0, %v]", attempt, delay, max)
		}
	}
}
