package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m, err := New(false)
	require.NoError(t, err)

	m.ObserveLookup("UUID", LookupFound)
	m.ObserveLookup("UUID", LookupFound)
	m.ObserveLookup("table_number", LookupNotFound)
	m.ObserveQR(QRCreated)
	m.ObserveRequest("GET", "/api/tables/lookup", "200", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TableLookups.WithLabelValues("UUID", LookupFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TableLookups.WithLabelValues("table_number", LookupNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QRProvisions.WithLabelValues(QRCreated)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "smartmenu_table_lookups_total")
	assert.Contains(t, string(body), "smartmenu_http_request_duration_seconds_bucket")
}

func TestNewIsIndependentPerCall(t *testing.T) {
	first, err := New(true)
	require.NoError(t, err)
	second, err := New(true)
	require.NoError(t, err)

	first.ObserveQR(QRCreated)
	assert.Equal(t, 1, testutil.CollectAndCount(first.QRProvisions))
	assert.Equal(t, 0, testutil.CollectAndCount(second.QRProvisions))

	families, err := second.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.False(t, names["smartmenu_qr_provisions_total"])
}

func TestRegistryWithoutRuntimeCollectors(t *testing.T) {
	m, err := New(false)
	require.NoError(t, err)
	m.ObserveLookup("UUID", LookupError)

	count, err := testutil.GatherAndCount(m.Registry(), "smartmenu_table_lookups_total", "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
