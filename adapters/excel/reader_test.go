package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `gender,age,education,currentSmoker,cigsPerDay,BMI,totChol,BP_Category,TenYearCHD
Male,39,4.0,0,0.0,26.97,195.0,Normal,0
Female,46,2.0,0,0.0,28.73,250.0,Elevated,0
Male,48,1.0,1,20.0,25.34,245.0,Hypertension Stage 1,1
`

func TestFileSource_Supports(t *testing.T) {
	s := NewFileSource()
	assert.True(t, s.Supports("/data/framingham.csv"))
	assert.True(t, s.Supports("file:///data/framingham.xlsx"))
	assert.True(t, s.Supports("data.CSV"))
	assert.False(t, s.Supports("https://example.com/framingham.csv"))
	assert.False(t, s.Supports("postgres://localhost/chd"))
	assert.False(t, s.Supports("/data/framingham.json"))
}

func TestFileSource_LoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framingham.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	subjects, err := NewFileSource().Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.Equal(t, "Male", subjects[2].Gender.String())
	assert.True(t, subjects[2].CurrentSmoker)
	assert.True(t, subjects[2].TenYearCHD)
}

// TestFileSource_LoadXLSX writes a workbook with excelize and reads it back
func TestFileSource_LoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framingham.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"gender", "age", "education", "currentSmoker", "cigsPerDay", "BMI", "totChol", "BP_Category", "TenYearCHD"},
		{"Female", 52, 3, 1, 15, 24.1, 231, "Hypertension Stage 2", 1},
		{"Male", 61, nil, 0, 0, 30.2, 199, "Normal", 0},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	subjects, err := NewFileSource().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, 52, subjects[0].Age)
	assert.Equal(t, 3.0, subjects[0].EducationCode)
	assert.Equal(t, "Hypertension Stage 2", subjects[0].BPLabel)
	assert.False(t, subjects[1].HasEducation)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource().Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataRetrieval, errors.GetCode(err))
}

func TestFileSource_SchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.csv")
	require.NoError(t, os.WriteFile(path, []byte("gender,age\nMale,40\n"), 0o644))

	_, err := NewFileSource().Load(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchema, errors.GetCode(err))
}
