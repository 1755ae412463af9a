package memory

import (
	"testing"

	"github.com/code-payments/crowdfund/pkg/ledger/account/tests"
)

func TestLedgerAccountMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
