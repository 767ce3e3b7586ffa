package file_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/aretw0/stagegen/internal/defaults"
	"github.com/aretw0/stagegen/internal/testutils"
	"github.com/aretw0/stagegen/pkg/adapters/file"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"pcpip.yaml": string(defaults.Bytes())})

	loader := file.New(filepath.Join(dir, "pcpip.yaml"))
	tests.SpecLoaderContractTest(t, loader, []string{"1", "2", "3", "5", "6", "7", "9"})
}

func TestLoader_JSON(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"rules.JSON": `{"stages": {"1": {"filter": "arm == 'painting'", "grouping": ["plate"],
			"columns": [{"static": {"name": "Metadata_Plate", "template": "{plate}"}}]}}}`,
	})

	doc, err := file.New(filepath.Join(dir, "rules.JSON")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, doc.StageIDs())
}

func TestLoader_Errors(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"broken.yaml": "stages: [\n"})

	_, err := file.New(filepath.Join(dir, "missing.yaml")).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, domain.ClassIO, domain.Classify(err))

	_, err = file.New(filepath.Join(dir, "broken.yaml")).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ClassSpec, domain.Classify(err))
}
