package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

func TestAdapter_Adapt(t *testing.T) {
	table := &domain.Table{
		Name:    "celer.xlsx",
		Columns: []string{ColumnPolicy, ColumnDocument, ColumnDate, ColumnHolder, ColumnBalance, ColumnInsurer, "Ramo"},
		Rows: []domain.Row{
			{ColumnPolicy: "23000001", ColumnDocument: "1347216594", ColumnDate: "01/13/2026",
				ColumnHolder: "ACME LTDA", ColumnBalance: "1,250,000", ColumnInsurer: "ALLIANZ"},
			{ColumnPolicy: "23000002", ColumnDocument: "", ColumnDate: "46023",
				ColumnHolder: "PEREZ", ColumnBalance: "abc", ColumnInsurer: "ALLIANZ"},
			{ColumnPolicy: "9", ColumnDocument: "9", ColumnDate: "46023", ColumnInsurer: "MAPFRE"},
		},
	}

	batch, err := New().Adapt(table, driven.InternalSource{
		Origin: "CELER", Role: domain.RoleSecondary, Insurer: "ALLIANZ",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FormatCollections, New().Format())
	require.Len(t, batch.Records, 2)

	a := batch.Records[0]
	assert.Equal(t, "1347216594", a.RawReceipt)
	assert.Equal(t, "347216594", a.Receipt)
	assert.Equal(t, domain.Date("2026-01-13"), a.Date)
	assert.Equal(t, "ACME LTDA", a.Counterparty)
	assert.Equal(t, "1250000", a.Balance.Decimal.String())
	assert.Equal(t, domain.RoleSecondary, a.Role)

	b := batch.Records[1]
	assert.False(t, b.MissingReceipt)
	assert.Equal(t, domain.Date("2026-01-01"), b.Date)
	assert.False(t, b.Balance.Valid)
	assert.True(t, b.DisplayBalance().IsZero())

	require.Len(t, batch.Warnings, 2)
	assert.Equal(t, ColumnBalance, batch.Warnings[0].Field)
	assert.Equal(t, ColumnDocument, batch.Warnings[1].Field)
}

func TestAdapter_UsedAsPrimary(t *testing.T) {
	table := &domain.Table{
		Columns: New().RequiredColumns(),
		Rows: []domain.Row{
			{ColumnPolicy: "1", ColumnDate: "2026-01-01", ColumnInsurer: "ALLIANZ"},
		},
	}

	batch, err := New().Adapt(table, driven.InternalSource{Origin: "CELER", Role: domain.RolePrimary, Insurer: "ALLIANZ"})

	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	assert.True(t, batch.Records[0].MissingReceipt)
}
