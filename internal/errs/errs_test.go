package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigurationError(t *testing.T) {
	err := Configuration("format", "chess", "unsupported format")
	if err.Error() != `invalid format "chess": unsupported format` {
		t.Errorf("unexpected message: %s", err.Error())
	}

	wrapped := fmt.Errorf("startup: %w", err)
	if !IsConfiguration(wrapped) {
		t.Error("expected wrapped error to be a configuration error")
	}
	if IsDataFetch(wrapped) {
		t.Error("configuration error must not match data fetch")
	}

	noValue := Configuration("copy_cap", "", "must be positive")
	if noValue.Error() != "invalid copy_cap: must be positive" {
		t.Errorf("unexpected message: %s", noValue.Error())
	}
}

func TestDataFetch(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if DataFetch("scryfall", nil) != nil {
			t.Error("expected nil")
		}
	})

	t.Run("wraps and unwraps", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := DataFetch("mtggoldfish", cause)
		if !IsDataFetch(err) {
			t.Fatal("expected data fetch error")
		}
		if !errors.Is(err, cause) {
			t.Error("expected cause to be reachable with errors.Is")
		}
		if err.Error() != "fetch from mtggoldfish failed: connection refused" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := DataFetch("mtgtop8", errors.New("timeout"))
		outer := DataFetch("meta", fmt.Errorf("aggregate: %w", inner))
		var dfe *DataFetchError
		if !errors.As(outer, &dfe) {
			t.Fatal("expected data fetch error")
		}
		if dfe.Source != "mtgtop8" {
			t.Errorf("expected inner source to be kept, got %s", dfe.Source)
		}
	})
}

func TestValidationWarningString(t *testing.T) {
	w := ValidationWarning{Kind: WarnUnresolvedCard, Subject: "Bolt", Message: "not in catalog"}
	if w.String() != "unresolved_card: Bolt (not in catalog)" {
		t.Errorf("unexpected string: %s", w.String())
	}
}
