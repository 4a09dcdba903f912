// Package decode contains the canonical value decoders that normalize
// chain-specific and spec-version-specific payload encodings (addresses,
// integers, transaction references, spec ids) into canonical typed values.
package decode

import (
	"fmt"
	"strconv"
	"strings"
)

// Semver is a protocol spec version derived from a block's spec id.
type Semver struct {
	Major int
	Minor int
	Patch int
}

// ParseSemver parses a "major.minor.patch" literal. Used for the static
// registration tables, so malformed input panics at startup.
func ParseSemver(s string) Semver {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		panic(fmt.Sprintf("invalid semver literal %q", s))
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			panic(fmt.Sprintf("invalid semver literal %q", s))
		}
		nums[i] = n
	}
	return Semver{Major: nums[0], Minor: nums[1], Patch: nums[2]}
}

// ParseSpecID derives the spec version from a block's spec id, formatted
// upstream as "<chainName>@<specVersionNumber>". The numeric version packs
// major/minor/patch into equal-width decimal thirds: the digits are left
// padded to a multiple of three and split evenly, so "@10900" is 1.9.0 and
// "@180" is 1.8.0.
func ParseSpecID(specID string) (Semver, error) {
	_, numStr, found := strings.Cut(specID, "@")
	if !found {
		return Semver{}, fmt.Errorf("invalid spec id %q", specID)
	}
	n, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return Semver{}, fmt.Errorf("invalid spec id %q: %w", specID, err)
	}

	digits := strconv.FormatUint(n, 10)
	width := (len(digits) + 2) / 3
	for len(digits) < width*3 {
		digits = "0" + digits
	}

	part := func(i int) int {
		v, _ := strconv.Atoi(digits[i*width : (i+1)*width])
		return v
	}
	return Semver{Major: part(0), Minor: part(1), Patch: part(2)}, nil
}

// Compare returns -1, 0 or 1 depending on whether v is less than, equal to
// or greater than other.
func (v Semver) Compare(other Semver) int {
	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] > p[1] {
			return 1
		}
		if p[0] < p[1] {
			return -1
		}
	}
	return 0
}

// Before reports whether v is strictly less than other.
func (v Semver) Before(other Semver) bool { return v.Compare(other) < 0 }

// AtLeast reports whether v is greater than or equal to other.
func (v Semver) AtLeast(other Semver) bool { return v.Compare(other) >= 0 }

// String renders the version as "major.minor.patch".
func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
