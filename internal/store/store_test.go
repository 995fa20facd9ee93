package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusters.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func square(x0, y0, power float64) geo.SatPixel {
	return geo.SatPixel{
		UL:      geo.Coord{Lat: y0 + 1, Lon: x0},
		UR:      geo.Coord{Lat: y0 + 1, Lon: x0 + 1},
		LR:      geo.Coord{Lat: y0, Lon: x0 + 1},
		LL:      geo.Coord{Lat: y0, Lon: x0},
		PowerMW: power,
	}
}

func sampleClusterList(t *testing.T, satellite, sector string, start time.Time) cluster.ClusterList {
	t.Helper()
	clusters, err := cluster.Build([]geo.SatPixel{square(0, 0, 4), square(50, 50, 7)}, 1e-9)
	require.NoError(t, err)

	return cluster.ClusterList{
		Satellite: satellite,
		Sector:    sector,
		ScanStart: start,
		ScanEnd:   start.Add(time.Minute),
		Clusters:  clusters,
	}
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.db")

	db1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()
}

func TestIsPresentAndAddClusterList(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2020, 8, 25, 15, 0, 0, 0, time.UTC)
	list := sampleClusterList(t, "G16", "CONUS", start)

	count, err := db.IsPresent("G16", "CONUS", list.ScanStart, list.ScanEnd)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, db.AddClusterList(list))

	count, err = db.IsPresent("G16", "CONUS", list.ScanStart, list.ScanEnd)
	require.NoError(t, err)
	assert.Equal(t, len(list.Clusters), count)
}

func TestAddClusterListIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2020, 8, 25, 15, 0, 0, 0, time.UTC)
	list := sampleClusterList(t, "G16", "CONUS", start)

	require.NoError(t, db.AddClusterList(list))
	first, err := db.IsPresent("G16", "CONUS", list.ScanStart, list.ScanEnd)
	require.NoError(t, err)

	require.NoError(t, db.AddClusterList(list))
	second, err := db.IsPresent("G16", "CONUS", list.ScanStart, list.ScanEnd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAddClusterListSkipsFlagged(t *testing.T) {
	db := openTestDB(t)
	flagged := cluster.Flag("G16", "CONUS", time.Now(), time.Now())
	require.NoError(t, db.AddClusterList(flagged))

	count, err := db.IsPresent("G16", "CONUS", flagged.ScanStart, flagged.ScanEnd)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewestScanStartEmptyIsEpoch(t *testing.T) {
	db := openTestDB(t)
	ts, err := db.NewestScanStart("G16", "CONUS")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Unix(0, 0).UTC()))
}

func TestNewestScanStartReflectsInserts(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2020, 8, 25, 15, 0, 0, 0, time.UTC)
	list := sampleClusterList(t, "G16", "CONUS", start)
	require.NoError(t, db.AddClusterList(list))

	ts, err := db.NewestScanStart("G16", "CONUS")
	require.NoError(t, err)
	assert.True(t, ts.Equal(list.MidpointTime()))
}

func TestQueryRowsRoundTripsPerimeter(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2020, 8, 25, 15, 0, 0, 0, time.UTC)
	list := sampleClusterList(t, "G16", "CONUS", start)
	require.NoError(t, db.AddClusterList(list))

	cursor, err := db.QueryRows("G16", "CONUS", start.Add(-time.Hour), start.Add(time.Hour), -90, -180, 90, 180)
	require.NoError(t, err)
	defer cursor.Close()

	var got int
	for {
		row, ok, err := cursor.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got++
		assert.Greater(t, row.Pixels.Len(), 0)
	}
	assert.Equal(t, len(list.Clusters), got)
}

func TestFireAndAssociationRoundTrip(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertFire(Fire{
		Satellite:    "G16",
		LastObserved: time.Date(2020, 8, 25, 15, 0, 0, 0, time.UTC),
		OriginLat:    40,
		OriginLon:    -100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, db.InsertAssociation(Association{ClusterRowID: 1, FireID: id}))

	fires, err := db.ListFires("G16")
	require.NoError(t, err)
	require.Len(t, fires, 1)
	assert.Equal(t, id, fires[0].ID)

	got, err := db.GetFire(id)
	require.NoError(t, err)
	assert.Equal(t, "G16", got.Satellite)

	assocs, err := db.ListAssociations(id)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.EqualValues(t, 1, assocs[0].ClusterRowID)
}
