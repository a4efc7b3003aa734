package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []domain.Format{domain.FormatCollections, domain.FormatPolicyExport}, r.Formats())
	require.NotNil(t, r.External())

	for _, f := range r.Formats() {
		adapter, err := r.Internal(f)
		require.NoError(t, err)
		assert.Equal(t, f, adapter.Format())
	}
}

func TestRegistry_UnknownFormat(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Internal(domain.Format("pdf"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
