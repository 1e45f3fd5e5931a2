package testing

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bgrewell/isobuild/pkg/iso9660"
)

// ContainsNonASCIIPrintable returns true if the string has any
// characters outside ASCII [32..126], i.e., not a standard printable.
func ContainsNonASCIIPrintable(s string) bool {
	for _, r := range s {
		if r < 32 || r > 126 {
			return true
		}
	}
	return false
}

// GroundTruthEntry represents a single expected file.
type GroundTruthEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// GroundTruth is the expected content of an image.
type GroundTruth struct {
	VolumeID string             `json:"volume_id"`
	Bootable bool               `json:"bootable"`
	Files    []GroundTruthEntry `json:"files"`
}

// LoadGroundTruth reads the JSON from a file and unmarshals it.
func LoadGroundTruth(filePath string) (*GroundTruth, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	gt := &GroundTruth{}
	if err := json.Unmarshal(data, gt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return gt, nil
}

// Validate compares an image against ground truth and returns an error describing every difference.
func Validate(img *iso9660.ISO9660, gt *GroundTruth) error {
	var problems []string
	if gt.VolumeID != "" && img.GetVolumeID() != gt.VolumeID {
		problems = append(problems, fmt.Sprintf("volume id %q, expected %q", img.GetVolumeID(), gt.VolumeID))
	}
	if img.HasElTorito() != gt.Bootable {
		problems = append(problems, fmt.Sprintf("el torito present: %t, expected %t", img.HasElTorito(), gt.Bootable))
	}

	actual := make(map[string]int64)
	names := img.FileNames()
	for i, rec := range img.ListFiles() {
		if ContainsNonASCIIPrintable(rec.FileIdentifier) {
			problems = append(problems, fmt.Sprintf("non-ASCII printable characters in entry: %q", rec.FileIdentifier))
		}
		actual[names[i]] = int64(rec.DataLength)
	}

	var missing, mismatched []string
	for _, e := range gt.Files {
		size, ok := actual[e.Name]
		if !ok {
			missing = append(missing, e.Name)
			continue
		}
		if size != e.Size {
			mismatched = append(mismatched, fmt.Sprintf("%s is %d bytes, expected %d", e.Name, size, e.Size))
		}
		delete(actual, e.Name)
	}
	var extra []string
	for name := range actual {
		extra = append(extra, name)
	}
	sort.Strings(extra)

	for _, m := range missing {
		problems = append(problems, "missing "+m)
	}
	problems = append(problems, mismatched...)
	for _, x := range extra {
		problems = append(problems, "unexpected "+x)
	}
	if len(problems) > 0 {
		return fmt.Errorf("image does not match ground truth:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
