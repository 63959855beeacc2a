package utils

import (
	"context"
	"testing"
)

func TestAcquireComposerSlot_RejectsNilClient(t *testing.T) {
	if _, err := AcquireComposerSlot(context.Background(), nil, "k", "owner", 1); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestReleaseComposerSlot_RejectsMissingArgs(t *testing.T) {
	if err := ReleaseComposerSlot(context.Background(), nil, "", ""); err == nil {
		t.Fatalf("expected error")
	}
}
