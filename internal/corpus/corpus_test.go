package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-screener/internal/apperrors"
)

const sampleCSV = `ID,Resume_str,Resume_html,Category
1,python statistics,<p>pandas</p>, Data Science
2,payroll onboarding,<p>benefits</p>,HR
3,no label here,,
`

func TestNewRejectsEmptyCorpus(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrData))
}

func TestNewTrimsCategories(t *testing.T) {
	c, err := New([]Document{{Text: "a", Category: "  HR "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"HR"}, c.Categories())

	_, err = New([]Document{{Text: "a", Category: " "}})
	assert.ErrorIs(t, err, apperrors.ErrData)
}

func TestReadCSVJoinsTextColumns(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(sampleCSV), ',', DefaultCSVOptions())
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"python statistics <p>pandas</p>", "payroll onboarding <p>benefits</p>"}, c.Texts())
	assert.Equal(t, []string{"Data Science", "HR"}, c.Categories())
	assert.Equal(t, map[string]int{"Data Science": 1, "HR": 1}, c.CountByCategory())
}

func TestReadCSVCustomColumns(t *testing.T) {
	input := "text\tlabel\nchef cooking\tChef\n"
	c, err := ReadCSV(strings.NewReader(input), '\t', CSVOptions{TextColumns: []string{"text"}, CategoryColumn: "label"})
	require.NoError(t, err)
	assert.Equal(t, []Document{{Text: "chef cooking", Category: "Chef"}}, c.Documents())
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  CSVOptions
	}{
		{name: "empty file", input: "", opts: DefaultCSVOptions()},
		{name: "missing text column", input: "Resume_str,Category\na,HR\n", opts: DefaultCSVOptions()},
		{name: "missing category column", input: "Resume_str,Resume_html\na,b\n", opts: DefaultCSVOptions()},
		{name: "header only", input: "Resume_str,Resume_html,Category\n", opts: DefaultCSVOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), ',', tt.opts)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindData, apperrors.KindOf(err))
		})
	}
}

func TestReadCSVLatin1(t *testing.T) {
	// "Résumé" encoded as ISO-8859-1.
	input := []byte("Resume_str,Resume_html,Category\nR\xe9sum\xe9,,HR\n")

	c, err := ReadCSV(strings.NewReader(string(input)), ',', CSVOptions{Encoding: EncodingLatin1})
	require.NoError(t, err)
	assert.Equal(t, "Résumé ", c.Texts()[0])

	_, err = ReadCSV(strings.NewReader(string(input)), ',', CSVOptions{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestLoadCSVFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resumes.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	c, err := LoadCSV(path, DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadCSV(filepath.Join(dir, "missing.csv"), DefaultCSVOptions())
	assert.Error(t, err)
}

func TestReadCSVStripsByteOrderMark(t *testing.T) {
	input := "\xef\xbb\xbfResume_str,Resume_html,Category\npython,,Data Science\n"

	c, err := ReadCSV(strings.NewReader(input), ',', DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Science"}, c.Categories())
}
