package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterMonotone(t *testing.T) {
	var got []float64
	r := NewReporter(func(fraction float64, _ string) {
		got = append(got, fraction)
	})

	r.Report(0.2, "a")
	r.Report(0.1, "b") // 回退被钳制到上一个值
	r.Report(0.5, "c")
	r.Report(1.5, "d") // 超界钳制到 1

	assert.Equal(t, []float64{0.2, 0.2, 0.5, 1.0}, got)
}

func TestReporterNilSafe(t *testing.T) {
	var r *Reporter
	assert.NotPanics(t, func() { r.Report(0.5, "x") })

	assert.NotPanics(t, func() { NewReporter(nil).Report(0.5, "x") })
}
