package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a database version ordered by major, minor, micro.
type Version struct {
	Major int
	Minor int
	Micro int
}

// V builds a Version from its components. Missing components are zero.
func V(major int, rest ...int) Version {
	v := Version{Major: major}
	if len(rest) > 0 {
		v.Minor = rest[0]
	}
	if len(rest) > 1 {
		v.Micro = rest[1]
	}
	return v
}

// ParseVersion parses "11", "11.1" or "11.1.2".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Micro: nums[2]}, nil
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return sign(v.Major - o.Major)
	case v.Minor != o.Minor:
		return sign(v.Minor - o.Minor)
	default:
		return sign(v.Micro - o.Micro)
	}
}

// IsBefore reports whether v is strictly lower than the given version.
func (v Version) IsBefore(major int, rest ...int) bool {
	return v.Compare(V(major, rest...)) < 0
}

// IsSameOrAfter reports whether v is at or above the given version.
func (v Version) IsSameOrAfter(major int, rest ...int) bool {
	return v.Compare(V(major, rest...)) >= 0
}

func (v Version) String() string {
	if v.Micro != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
