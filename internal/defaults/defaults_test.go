package defaults

import (
	"testing"

	"github.com/aretw0/stagegen/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Valid(t *testing.T) {
	doc, err := Document()
	require.NoError(t, err)
	require.NoError(t, spec.Validate(doc))

	assert.Equal(t, []string{"1", "2", "3", "5", "6", "7", "9"}, doc.StageIDs())
	assert.Equal(t, "load_data_pipeline9_revised.csv", doc.Output.ReferenceFor("9"))

	s9, ok := doc.Stage("9")
	require.True(t, ok)
	assert.True(t, s9.IsSynthetic())
	assert.Equal(t, []int{1, 2, 3, 4}, s9.Synthetic.Tiles())
}

func TestDocument_FreshCopies(t *testing.T) {
	a, err := Document()
	require.NoError(t, err)
	a.Stages["1"].Filter = "arm == 'barcoding'"

	b, err := Document()
	require.NoError(t, err)
	assert.Equal(t, "arm == 'painting'", b.Stages["1"].Filter)
}
