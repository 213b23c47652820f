package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// SysfsLister enumerates V4L2 capture nodes from sysfs.
type SysfsLister struct {
	Root   string // defaults to /sys/class/video4linux
	DevDir string // defaults to /dev
}

func (l SysfsLister) ListCameras(ctx context.Context) ([]Device, error) {
	root := l.Root
	if root == "" {
		root = "/sys/class/video4linux"
	}

	devDir := l.DevDir
	if devDir == "" {
		devDir = "/dev"
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %w", ErrDeviceEnumeration, err)
	}

	var devices []Device

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := e.Name()
		if !strings.HasPrefix(id, "video") {
			continue
		}

		// Each camera also exposes metadata nodes; only index 0 captures frames.
		if idx, err := os.ReadFile(filepath.Join(root, id, "index")); err == nil && strings.TrimSpace(string(idx)) != "0" {
			continue
		}

		label := id
		if name, err := os.ReadFile(filepath.Join(root, id, "name")); err == nil && strings.TrimSpace(string(name)) != "" {
			label = strings.TrimSpace(string(name))
		}

		devices = append(devices, Device{ID: id, Label: label, Path: filepath.Join(devDir, id)})
	}

	slices.SortFunc(devices, func(a, b Device) int {
		return nodeNumber(a.ID) - nodeNumber(b.ID)
	})

	return devices, nil
}

func nodeNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "video"))
	if err != nil {
		return -1
	}

	return n
}
