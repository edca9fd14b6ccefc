package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func newTestCollector() *Collector {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	ns := fmt.Sprintf("test_%d", seq)
	return NewCollector(ns, prometheus.NewRegistry(), zap.NewNop())
}

func TestNewCollector(t *testing.T) {
	c := newTestCollector()

	assert.NotNil(t, c)
	assert.NotNil(t, c.plansComputed)
	assert.NotNil(t, c.planLatency)
	assert.NotNil(t, c.actionsExecuted)
	assert.NotNil(t, c.processOutcomes)
}

func TestCollector_RecordPlan(t *testing.T) {
	c := newTestCollector()

	c.RecordPlan("proc-1", "found", 3, 2*time.Millisecond)
	c.RecordPlan("proc-1", "none", 0, 1*time.Millisecond)

	assert.Greater(t, testutil.CollectAndCount(c.plansComputed), 0)
	assert.Greater(t, testutil.CollectAndCount(c.planLatency), 0)
	// Plan length is only observed for found plans.
	assert.Equal(t, 1, testutil.CollectAndCount(c.planLength))
}

func TestCollector_RecordAction(t *testing.T) {
	c := newTestCollector()

	c.RecordAction("proc-1", "craft", "ok", 50*time.Millisecond)
	c.RecordAction("proc-1", "craft", "error", 10*time.Millisecond)

	assert.Greater(t, testutil.CollectAndCount(c.actionsExecuted), 0)
	assert.Greater(t, testutil.CollectAndCount(c.actionDuration), 0)
}

func TestCollector_RecordOutcomeAndSize(t *testing.T) {
	c := newTestCollector()

	c.RecordOutcome("COMPLETED")
	c.RecordOutcome("STUCK")
	c.RecordBlackboardSize("proc-1", 7)

	assert.Greater(t, testutil.CollectAndCount(c.processOutcomes), 0)
	assert.Greater(t, testutil.CollectAndCount(c.blackboardSize), 0)
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	c := newTestCollector()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			c.RecordPlan("proc-1", "found", 2, time.Millisecond)
			c.RecordAction("proc-1", "craft", "ok", time.Millisecond)
			c.RecordOutcome("COMPLETED")
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Greater(t, testutil.CollectAndCount(c.plansComputed), 0)
	assert.Greater(t, testutil.CollectAndCount(c.actionsExecuted), 0)
}
