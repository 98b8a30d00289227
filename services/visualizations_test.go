package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseCountFromSeries(t *testing.T) {
	assert.Equal(t, 0, CaseCountFromSeries(nil))
	assert.Equal(t, 0, CaseCountFromSeries([]byte(`not json`)))
	assert.Equal(t, 0, CaseCountFromSeries([]byte(`[]`)))

	series := []byte(`[{"id": 1, "name": "Roe"}, {"id": 2}, {"id": 3}]`)
	assert.Equal(t, 3, CaseCountFromSeries(series))

	// Duplicate nodes count once.
	dupes := []byte(`[{"id": 1}, {"id": 1}, {"id": 2}]`)
	assert.Equal(t, 2, CaseCountFromSeries(dupes))
}
