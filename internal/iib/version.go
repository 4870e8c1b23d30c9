package iib

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// MajorMinor returns "<major>.<minor>" of a cluster version such as
// "4.15.2", "v4.15" or "4.16.0-0.nightly-2024-05-01-000000".
func MajorMinor(version string) (string, error) {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return "", fmt.Errorf("invalid cluster version %q: %w", version, err)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor), nil
}

// VersionKey returns the index key of a cluster version ("4.15.2" -> "v4.15").
func VersionKey(version string) (string, error) {
	mm, err := MajorMinor(version)
	if err != nil {
		return "", err
	}
	return "v" + mm, nil
}
