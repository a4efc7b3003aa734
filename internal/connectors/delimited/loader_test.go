package delimited

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDecode(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Póliza"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		want     string
		encoding string
	}{
		{"plain utf-8", []byte("Póliza"), "Póliza", "utf-8"},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, "Póliza"...), "Póliza", "utf-8-bom"},
		{"utf-16 with bom", utf16, "Póliza", "utf-16"},
		{"windows-1252", []byte("P\xf3liza"), "Póliza", "windows-1252"},
		{"empty", nil, "", "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.encoding, enc)
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"comma", "a,b,c\n1,2,3", ','},
		{"semicolon", "\n\na;b;c\n", ';'},
		{"tab", "a\tb\tc", '\t'},
		{"pipe", "a|b", '|'},
		{"quoted commas ignored", "\"x,y,z\";b;c", ';'},
		{"single column", "policy", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.input)))
		})
	}
}

func TestLoader_Load(t *testing.T) {
	data := []byte("Reporte de cartera;;\n" +
		"Poliza;Documento;Saldo\n" +
		"023537654;347252144;\"1.234,50\"\n" +
		";;\n" +
		"23178309;347216594\n")
	path := writeFile(t, "cobros.csv", data)

	table, err := New().Load(context.Background(), path, driven.LoadOptions{
		HeaderKeys: []string{"Poliza", "Documento"},
	})

	require.NoError(t, err)
	assert.Equal(t, "cobros.csv", table.Name)
	assert.Equal(t, []string{"Poliza", "Documento", "Saldo"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1.234,50", table.Rows[0]["Saldo"])
	assert.Equal(t, "23178309", table.Rows[1]["Poliza"])
	assert.Equal(t, "", table.Rows[1]["Saldo"])
}

func TestLoader_LoadLatin1(t *testing.T) {
	path := writeFile(t, "export.csv", []byte("N\xdaMERO P\xd3LIZA,TOTAL\n1,2\n"))

	table, err := New().Load(context.Background(), path, driven.LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"NÚMERO PÓLIZA", "TOTAL"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "1", table.Rows[0]["NÚMERO PÓLIZA"])
}

func TestLoader_Errors(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "none.csv"), driven.LoadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := writeFile(t, "empty.csv", []byte("\n\n"))
	_, err = New().Load(context.Background(), empty, driven.LoadOptions{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Load(ctx, empty, driven.LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
