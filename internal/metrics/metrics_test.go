package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCard(t *testing.T) {
	m := NewCard(prometheus.NewRegistry())
	m.Render("preview", "ok")
	m.Render("preview", "ok")
	m.VersionLookup("error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Renders.WithLabelValues("preview", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionLookups.WithLabelValues("error")))

	var nilCard *Card
	assert.NotPanics(t, func() { nilCard.Render("preview", "ok") })
}
