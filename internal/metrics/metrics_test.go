package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
	assert.Same(t, first, GetRegistry())
}

func TestRecordersMoveCounters(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(PollsTotal)
	RecordPoll(0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(PollsTotal))

	RecordResolverTier("forced id")
	assert.Equal(t, 1.0, testutil.ToFloat64(ResolverTierHitsTotal.WithLabelValues("forced id")))

	RecordScoreSource("data_api_v4")
	RecordScoreSource("data_api_v4")
	assert.Equal(t, 2.0, testutil.ToFloat64(ScoreSourceTotal.WithLabelValues("data_api_v4")))

	UpdateProbabilities(0.61, 0.74)
	assert.Equal(t, 0.61, testutil.ToFloat64(BaseProbability))
	assert.Equal(t, 0.74, testutil.ToFloat64(DynamicProbability))

	UpdateScore(7, 4)
	assert.Equal(t, 7.0, testutil.ToFloat64(RoundScore.WithLabelValues("our")))
	assert.Equal(t, 4.0, testutil.ToFloat64(RoundScore.WithLabelValues("enemy")))

	UpdateWidgetClients(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(WidgetClients))
}

func TestServerEndpoints(t *testing.T) {
	srv := NewServer(ServerConfig{ServiceName: "winprob", Path: "/metrics"})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "server starts not ready")

	srv.SetReady(true)
	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
