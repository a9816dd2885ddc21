package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(LedgerMutations.WithLabelValues("credit"))
	Ledger("credit")
	assert.Equal(t, before+1, testutil.ToFloat64(LedgerMutations.WithLabelValues("credit")))

	failed := testutil.ToFloat64(Notifications.WithLabelValues("approval", "failed"))
	Notification("approval", false)
	assert.Equal(t, failed+1, testutil.ToFloat64(Notifications.WithLabelValues("approval", "failed")))
}
