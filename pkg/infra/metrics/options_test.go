package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithRequestID(t *testing.T) {
	collector := NewCollector(&Config{}, WithRequestID("req-1"))
	assert.Equal(t, "req-1", collector.RequestID())
}

func TestWithRequestID_Empty(t *testing.T) {
	collector := NewCollector(nil)
	assert.NotEmpty(t, collector.RequestID())
}

func TestCollector_FiltersDisabledKinds(t *testing.T) {
	collector := NewCollector(&Config{EnableGuardEvents: true}, WithRequestID("req-2"))

	collector.Emit(NewSanitizeEvent("clean-iframe", OutcomeOK, map[string]int{"scripts": 2}))
	collector.Emit(NewUpstreamEvent("embed.example.com", 200, 40*time.Millisecond))
	collector.Emit(NewGuardEvent("popup", "open", "ad-domain", true))
	collector.Emit(nil)

	events := collector.Flush()
	if assert.Len(t, events, 2) {
		assert.Equal(t, KindSanitize, events[0].Kind)
		assert.Equal(t, "req-2", events[0].RequestID)
		assert.Equal(t, KindGuard, events[1].Kind)
		assert.Equal(t, "open", events[1].Action)
	}
	assert.Empty(t, collector.Flush())

	var nilCollector *Collector
	nilCollector.Emit(NewDispatchEvent("direct", false, ""))
}
