package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cohortCSV = `gender,age,currentSmoker,cigsPerDay,education,BMI,totChol,BP_Category,TenYearCHD
Male,39,0,0,4,26.97,195,Normal,0
Female,46,0,0,2,28.73,250,Elevated,0
Male,48,1,20,1,25.34,245,Hypertension Stage 1,0
Female,61,1,30,3,28.58,225,Hypertension Stage 2,1
Female,46,1,23,3,23.1,285,Normal,0
Male,43,0,0,2,30.3,228,Hypertension Stage 2,1
`

func writeCohort(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framingham.csv")
	require.NoError(t, os.WriteFile(path, []byte(cohortCSV), 0o644))
	return path
}

func TestRunSummary(t *testing.T) {
	path := writeCohort(t)
	var out bytes.Buffer

	query := url.Values{"gender": {"Male"}, "risk": {"Blood Pressure"}}
	require.NoError(t, runSummary(context.Background(), &out, newLoader(time.Second), path, query))

	var view struct {
		Source string `json:"source"`
		Result struct {
			Subjects      int `json:"subjects"`
			Cases         int `json:"cases"`
			BloodPressure struct {
				Categories []struct {
					Category string `json:"category"`
				} `json:"categories"`
			} `json:"blood_pressure"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, path, view.Source)
	assert.Equal(t, 3, view.Result.Subjects)
	assert.Equal(t, 1, view.Result.Cases)
	require.Len(t, view.Result.BloodPressure.Categories, 3)
	assert.Equal(t, "Normal", view.Result.BloodPressure.Categories[0].Category)
	assert.Equal(t, "Hypertension Stage 2", view.Result.BloodPressure.Categories[2].Category)
}

func TestRunSummary_InvalidFilters(t *testing.T) {
	path := writeCohort(t)
	query := url.Values{"age_min": {"70"}, "age_max": {"30"}}

	err := runSummary(context.Background(), &bytes.Buffer{}, newLoader(time.Second), path, query)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSummaryCmd_Flags(t *testing.T) {
	path := writeCohort(t)
	cmd := newSummaryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--source", path, "--gender", "Female", "--age-min", "45", "--age-max", "50"})

	require.NoError(t, cmd.Execute())

	var view struct {
		Result struct {
			Subjects int `json:"subjects"`
			Filters  struct {
				AgeMin int    `json:"age_min"`
				Risk   string `json:"risk_factor"`
			} `json:"filters"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, 2, view.Result.Subjects)
	assert.Equal(t, 45, view.Result.Filters.AgeMin)
	assert.Equal(t, "Smoking", view.Result.Filters.Risk)
}

func TestImportCmd_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cmd := newImportCmd()
	cmd.SetArgs([]string{"--source", writeCohort(t)})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
