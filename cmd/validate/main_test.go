package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
)

const validCSV = `local_authority_highway,time,collision_severity,number_of_casualties,number_of_vehicles,longitude,latitude
Enfield,08:12,Slight,1,2,-0.08,51.65
Enfield,8:40,Serious,2,1,-0.08,51.64
Lambeth,20:05,Slight,1,2,-0.11,51.45
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_ValidCSV(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, writeFile(t, "c.csv", validCSV), "", domain.DefaultFilterSet())

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Records: 3 CSV rows")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, filepath.Join(t.TempDir(), "missing.csv"), "", domain.DefaultFilterSet())

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL")
}

func TestRun_BadRows(t *testing.T) {
	data := `local_authority_highway,time,collision_severity,number_of_casualties,number_of_vehicles,longitude,latitude
Enfield,noon,Slight,one,2,-0.08,51.65
Croydon,25:10,Slight,1,2,west,51.37
Newham,-1:00,Slight,1,2,0.03,51.52
`
	var out bytes.Buffer
	code := run(&out, writeFile(t, "c.csv", data), "", domain.DefaultFilterSet())

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `line 2: unparsable time "noon"`)
	assert.Contains(t, out.String(), "line 2: number_of_casualties")
	assert.Contains(t, out.String(), "line 3: hour 25 outside 0-23")
	assert.Contains(t, out.String(), "line 3: longitude")
	assert.Contains(t, out.String(), "line 4: hour -1 outside 0-23")
	assert.NotContains(t, out.String(), `line 4: unparsable`)
}

func TestValidateSchema(t *testing.T) {
	p := validateSchema([]string{"local_authority_highway", "time", "time"})

	assert.False(t, p.passed())
	assert.Contains(t, p.errors, `duplicate column "time"`)
	assert.Contains(t, p.errors, `missing column "latitude"`)
}

func TestValidateMatrix(t *testing.T) {
	records := []domain.CollisionRecord{{City: "Enfield", Hour: 8}, {City: "Enfield", Hour: 8}, {City: "Hackney", Hour: 7}}

	p := validateMatrix(records, domain.DefaultFilterSet())

	assert.True(t, p.passed(), p.errors)
}

func TestValidateMatrixFile(t *testing.T) {
	records := []domain.CollisionRecord{{City: "Enfield", Hour: 8}}
	filter := domain.DefaultFilterSet()

	snap := domain.Snapshot{Matrix: domain.Aggregate(records, filter)}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := writeFile(t, "matrix.json", string(data))

	assert.True(t, validateMatrixFile(path, records).passed())

	stale := validateMatrixFile(path, append(records, domain.CollisionRecord{City: "Enfield", Hour: 8}))
	assert.False(t, stale.passed())
	assert.Contains(t, stale.errors, "max collisions: file=1, csv=2")
}

func TestValidateMatrixFile_CustomFilter(t *testing.T) {
	records := []domain.CollisionRecord{
		{City: "Camden", Hour: 22},
		{City: "Camden", Hour: 22},
		{City: "Leeds", Hour: 6},
		{City: "Enfield", Hour: 8},
	}
	filter := domain.FilterSet{Cities: []string{"Camden", "Leeds"}, Hours: []int{6, 22}}

	snap := domain.Snapshot{Matrix: domain.Aggregate(records, filter)}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := writeFile(t, "matrix.json", string(data))

	p := validateMatrixFile(path, records)
	assert.True(t, p.passed(), p.errors)

	var out bytes.Buffer
	code := run(&out, writeFile(t, "c.csv", validCSV), path, domain.DefaultFilterSet())
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "max collisions: file=2, csv=0")
}

func TestValidateMatrixFile_EmptyFilter(t *testing.T) {
	path := writeFile(t, "matrix.json", `{"matrix":{"cities":[],"hours":[7],"cells":[]}}`)

	p := validateMatrixFile(path, nil)

	assert.False(t, p.passed())
	assert.Contains(t, p.errors[0], "no target cities")
}
