package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/aretw0/espalier/pkg/search"
)

func TestMetrics_RecordsRewrites(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	metrics := observability.NewMetrics()
	eng := rewrite.New(mod, rewrite.WithLifecycleHooks(metrics.Hooks()))

	res, count, err := eng.ERewrite(context.Background(), testutils.MustParse(t, mod, "a"), -1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "c", mod.Store.String(res))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rewrites.WithLabelValues("EXAMPLE", "rule", "ab")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rewrites.WithLabelValues("EXAMPLE", "rule", "bc")))
}

func TestMetrics_RecordsSearch(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	metrics := observability.NewMetrics()
	eng := rewrite.New(mod, rewrite.WithLifecycleHooks(metrics.Hooks()))
	ctx := context.Background()

	s, err := search.New(ctx, eng,
		testutils.MustParse(t, mod, "f(a, a)"), testutils.MustParse(t, mod, "f(X, c)"))
	require.NoError(t, err)
	for {
		_, ok, err := s.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	assert.Equal(t, 9.0, testutil.ToFloat64(metrics.StatesDiscovered.WithLabelValues("EXAMPLE")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Solutions.WithLabelValues("EXAMPLE")))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `espalier_search_solutions_total{module="EXAMPLE"} 3`)
}

func TestLoggingHooks_MergeWithMetrics(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := observability.NewMetrics()

	hooks := observability.LoggingHooks(logger).Merge(metrics.Hooks())
	eng := rewrite.New(mod, rewrite.WithLifecycleHooks(hooks))

	_, _, err := eng.Rewrite(context.Background(), testutils.MustParse(t, mod, "a"))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "label=ab")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rewrites.WithLabelValues("EXAMPLE", "rule", "ab")))
}
