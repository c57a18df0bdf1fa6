package csv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodes_Success(t *testing.T) {
	input := "id,name,lat,lon,kind\n" +
		"stop-1,Central,-23.55,-46.63,bus_stop\n" +
		"stop-2,North,-23.50,-46.60,entrance\n"

	records, err := LoadNodes(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "stop-1", records[0].ID)
	assert.Equal(t, "Central", records[0].Name)
	assert.InDelta(t, -23.55, records[0].Lat, 1e-9)
	assert.Equal(t, "entrance", records[1].Kind)
}

func TestLoadNodes_InvalidLat(t *testing.T) {
	input := "id,name,lat,lon,kind\n" +
		"stop-1,Central,not-a-number,-46.63,bus_stop\n"

	_, err := LoadNodes(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadNodes_WrongColumnCount(t *testing.T) {
	input := "id,name,lat,lon,kind\n" +
		"stop-1,Central,-23.55,-46.63\n"

	_, err := LoadNodes(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 columns")
}

func TestLoadEdges_Success(t *testing.T) {
	input := "from,to,time_min,transfer,stairs,bad_pavement,flood_risk,mode\n" +
		"stop-1,stop-2,12.5,0,1,0,1,bus\n" +
		"stop-2,stop-3,5,true,false,false,false,pedestrian\n"

	records, err := LoadEdges(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "stop-1", records[0].From)
	assert.False(t, records[0].Transfer)
	assert.True(t, records[0].Stairs)
	assert.True(t, records[0].FloodRisk)

	assert.True(t, records[1].Transfer)
	assert.False(t, records[1].Stairs)
}

func TestLoadEdges_InvalidBoolean(t *testing.T) {
	input := "from,to,time_min,transfer,stairs,bad_pavement,flood_risk,mode\n" +
		"stop-1,stop-2,12.5,maybe,1,0,1,bus\n"

	_, err := LoadEdges(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transfer")
}

func TestLoadNodes_EmptyInput(t *testing.T) {
	records, err := LoadNodes(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, records)
}
