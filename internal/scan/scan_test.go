package scan_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/scan"
)

func TestSelectCamera(t *testing.T) {
	type testCase struct {
		name    string
		devices []scan.Device
		wantID  string
		wantErr error
	}

	tests := []testCase{
		{
			name:    "NoDevices",
			wantErr: scan.ErrNoCamera,
		},
		{
			name:    "TwoRearPicksSecond",
			devices: []scan.Device{{ID: "front", Label: "Front camera"}, {ID: "wide", Label: "Back Camera"}, {ID: "main", Label: "camera2 0, facing back"}},
			wantID:  "main",
		},
		{
			name:    "SingleRear",
			devices: []scan.Device{{ID: "front", Label: "Front"}, {ID: "rear", Label: "Câmera traseira"}},
			wantID:  "rear",
		},
		{
			name:    "EnvironmentMatchesCaseInsensitive",
			devices: []scan.Device{{ID: "a", Label: "USB"}, {ID: "b", Label: "ENVIRONMENT facing"}},
			wantID:  "b",
		},
		{
			name:    "NoRearFallsBackToFirst",
			devices: []scan.Device{{ID: "a", Label: "Integrated Webcam"}, {ID: "b", Label: "Logitech C920"}},
			wantID:  "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scan.SelectCamera(tt.devices)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestFindCamera(t *testing.T) {
	devices := []scan.Device{{ID: "video0", Label: "Webcam", Path: "/dev/video0"}}

	got, err := scan.FindCamera(devices, "/dev/video0")
	require.NoError(t, err)
	assert.Equal(t, "video0", got.ID)

	_, err = scan.FindCamera(devices, "video9")
	assert.ErrorIs(t, err, scan.ErrNoCamera)
}

func TestSysfsLister(t *testing.T) {
	root := t.TempDir()

	node := func(id, name, index string) {
		dir := filepath.Join(root, id)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "name"), []byte(name+"\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte(index+"\n"), 0o644))
	}

	node("video10", "USB Rear Camera", "0")
	node("video2", "Integrated Webcam", "0")
	node("video3", "Integrated Webcam", "1")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "v4l-subdev0"), 0o755))

	lister := scan.SysfsLister{Root: root, DevDir: "/dev"}

	got, err := lister.ListCameras(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []scan.Device{
		{ID: "video2", Label: "Integrated Webcam", Path: "/dev/video2"},
		{ID: "video10", Label: "USB Rear Camera", Path: "/dev/video10"},
	}, got)
}

func TestSysfsLister_MissingRoot(t *testing.T) {
	lister := scan.SysfsLister{Root: filepath.Join(t.TempDir(), "absent")}

	got, err := lister.ListCameras(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = scan.SelectCamera(got)
	assert.ErrorIs(t, err, scan.ErrNoCamera)
}
