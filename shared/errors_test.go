package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestServiceErrorClassification(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewFetchError("FetchPage", cause)

	if err.Category != ErrorCategoryNetwork || err.Code != CodeFetchFailed {
		t.Errorf("classification: %s/%s", err.Category, err.Code)
	}
	if !err.Retryable {
		t.Error("fetch failures should be retryable")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should unwrap")
	}
}

func TestIsNormalizationError(t *testing.T) {
	normErr := NewNormalizationError("Normalize", errors.New("no canonical field matched"))
	if !IsNormalizationError(normErr) {
		t.Error("normalization error not recognized")
	}
	if !IsNormalizationError(fmt.Errorf("run failed: %w", normErr)) {
		t.Error("wrapped normalization error not recognized")
	}
	if IsNormalizationError(NewFetchError("FetchPage", errors.New("timeout"))) {
		t.Error("fetch error misclassified as normalization")
	}
	if IsNormalizationError(errors.New("plain")) {
		t.Error("plain error misclassified")
	}
}

func TestLogErrorEmitsClassificationFields(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	NewFetchError("FetchPage", errors.New("connection refused")).LogError()

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry emitted")
	}
	if entry.Level != logrus.ErrorLevel {
		t.Errorf("level: got %v", entry.Level)
	}
	if entry.Data["error_category"] != ErrorCategoryNetwork {
		t.Errorf("category field: got %v", entry.Data["error_category"])
	}
	if entry.Data["error_code"] != CodeFetchFailed {
		t.Errorf("code field: got %v", entry.Data["error_code"])
	}
	if entry.Data["operation"] != "FetchPage" {
		t.Errorf("operation field: got %v", entry.Data["operation"])
	}
}

func TestWrapErrorKeepsExistingClassification(t *testing.T) {
	original := NewNormalizationError("Normalize", errors.New("bad table"))
	wrapped := WrapError(original, ErrorCategoryProcessing, CodeNormalization, "Run", false)

	if wrapped.Code != CodeNormalization || wrapped.Operation != "Run" {
		t.Errorf("wrap: %s/%s", wrapped.Code, wrapped.Operation)
	}
	if WrapError(nil, ErrorCategoryProcessing, CodeNormalization, "Run", false) != nil {
		t.Error("wrapping nil should stay nil")
	}
}
