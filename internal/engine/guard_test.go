package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"projector/internal/config"
	"projector/internal/domain"
)

func TestSaveGuardRejectsOverlap(t *testing.T) {
	e := Engine{saves: newSaveGuard()}
	release, err := e.beginSave("program", "p1")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := e.beginSave("program", "p1"); !errors.Is(err, domain.ErrSaveInProgress) {
		t.Fatalf("expected save in progress, got %v", err)
	}
	other, err := e.beginSave("program", "p2")
	if err != nil {
		t.Fatalf("other record: %v", err)
	}
	other()
	release()
	release()
	again, err := e.beginSave("program", "p1")
	if err != nil {
		t.Fatalf("after release: %v", err)
	}
	again()
}

func TestStoreErrClassification(t *testing.T) {
	if err := storeErr("op", "program", "p1", nil); err != nil {
		t.Fatalf("nil: %v", err)
	}
	err := storeErr("op", "program", "p1", domain.ErrNotFound)
	var nf domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "p1" {
		t.Fatalf("not found: %v", err)
	}
	if !domain.IsRemote(storeErr("op", "program", "p1", errors.New("disk on fire"))) {
		t.Fatalf("expected remote error")
	}
	ve := domain.NewValidationError("sort", "bad")
	if !domain.IsValidation(storeErr("op", "program", "", ve)) {
		t.Fatalf("validation should pass through")
	}
}

func TestReadWithRetry(t *testing.T) {
	cfg := config.Default()
	cfg.Store.ListRetries = 2
	cfg.Store.RetryBase = time.Millisecond
	e := Engine{Config: cfg, saves: newSaveGuard()}

	calls := 0
	err := e.readWithRetry(context.Background(), "list", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return domain.RemoteError{Op: "list", Err: errors.New("connection reset")}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third attempt, got err=%v calls=%d", err, calls)
	}

	calls = 0
	err = e.readWithRetry(context.Background(), "list", func(ctx context.Context) error {
		calls++
		return domain.RemoteError{Op: "list", Err: errors.New("down")}
	})
	if !domain.IsRemote(err) || calls != 3 {
		t.Fatalf("expected remote error after 3 attempts, got err=%v calls=%d", err, calls)
	}

	calls = 0
	err = e.readWithRetry(context.Background(), "list", func(ctx context.Context) error {
		calls++
		return domain.NewValidationError("sort", "bad")
	})
	if !domain.IsValidation(err) || calls != 1 {
		t.Fatalf("validation must not retry, got err=%v calls=%d", err, calls)
	}
}
