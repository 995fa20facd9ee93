package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/geo"
	"github.com/rnleach/satfire/internal/store"
	"github.com/stretchr/testify/require"
)

func squarePixel(x0, y0, power float64) geo.SatPixel {
	return geo.SatPixel{
		UL:      geo.Coord{Lat: y0 + 1, Lon: x0},
		UR:      geo.Coord{Lat: y0 + 1, Lon: x0 + 1},
		LR:      geo.Coord{Lat: y0, Lon: x0 + 1},
		LL:      geo.Coord{Lat: y0, Lon: x0},
		PowerMW: power,
	}
}

func sampleClusterListAt(t *testing.T, satellite, sector string, start time.Time) cluster.ClusterList {
	t.Helper()
	clusters, err := cluster.Build([]geo.SatPixel{squarePixel(0, 0, 4)}, 1e-9)
	require.NoError(t, err)
	return cluster.ClusterList{
		Satellite: satellite,
		Sector:    sector,
		ScanStart: start,
		ScanEnd:   start.Add(time.Minute),
		Clusters:  clusters,
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func drainStrings(c *Courier[string]) []string {
	c.RegisterReceiver()
	defer c.DoneReceiving()
	var out []string
	for {
		v, ok := c.Receive()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestWalkerVisitsEveryFileWithoutPruning(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2020/238/15/a.nc"))
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2020/237/23/b.nc"))
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2019/360/10/c.nc"))

	out := NewCourier[string](8)
	w := NewWalker(root, false, nil, out)

	done := make(chan struct{})
	go func() { w.Run(); close(done) }()

	got := drainStrings(out)
	<-done

	sort.Strings(got)
	require.Len(t, got, 3)
}

func TestWalkerPrunesOlderThanNewestScanStart(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2020/238/14/old_hour.nc"))
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2020/238/15/new_hour.nc"))
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2020/237/23/old_doy.nc"))
	touch(t, filepath.Join(root, "G16/ABI-L2-FDCC/2019/360/10/old_year.nc"))

	dbPath := filepath.Join(t.TempDir(), "clusters.db")
	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	mr := time.Date(2020, 8, 25, 15, 0, 0, 0, time.UTC) // 2020, day-of-year 238, hour 15
	list := sampleClusterListAt(t, "G16", "CONUS", mr)
	require.NoError(t, db.AddClusterList(list))

	newest, err := db.NewestScanStart("G16", "CONUS")
	require.NoError(t, err)
	require.Equal(t, 2020, newest.Year())
	require.Equal(t, 238, newest.YearDay())
	require.Equal(t, 15, newest.Hour())

	out := NewCourier[string](8)
	w := NewWalker(root, true, db, out)

	done := make(chan struct{})
	go func() { w.Run(); close(done) }()

	got := drainStrings(out)
	<-done

	require.Len(t, got, 1)
	require.Equal(t, filepath.Join(root, "G16/ABI-L2-FDCC/2020/238/15/new_hour.nc"), got[0])
}
