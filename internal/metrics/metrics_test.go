package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPropagation(t *testing.T) {
	before := testutil.ToFloat64(PropagationTotal.WithLabelValues("inject", "messages", "failure"))

	RecordPropagation("inject", "messages", false, 0.2)

	after := testutil.ToFloat64(PropagationTotal.WithLabelValues("inject", "messages", "failure"))
	assert.Equal(t, before+1, after)
}

func TestRecordSessionEstablished(t *testing.T) {
	before := testutil.ToFloat64(SessionsEstablished.WithLabelValues("token", "success"))

	RecordSessionEstablished("token", true)

	assert.Equal(t, before+1, testutil.ToFloat64(SessionsEstablished.WithLabelValues("token", "success")))
}

func TestRecordSignout(t *testing.T) {
	before := testutil.ToFloat64(SignoutsTotal.WithLabelValues("external", "success"))

	RecordSignout("external", true)

	assert.Equal(t, before+1, testutil.ToFloat64(SignoutsTotal.WithLabelValues("external", "success")))
}
