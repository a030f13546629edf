// Package sdk defines the identity of a symbol database and its remote
// catalog entry.
package sdk

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FileExt is the extension of a database file on disk.
const FileExt = ".memdb"

var ErrInvalidIdentifier = errors.New("symstash: invalid sdk identifier")

// Info identifies one symbol database, e.g. iOS_10.2.1_14D27.
//
// Info is comparable and can be used as a map key.
type Info struct {
	Name         string `json:"name"`
	VersionMajor uint32 `json:"version_major"`
	VersionMinor uint32 `json:"version_minor"`
	VersionPatch uint32 `json:"version_patch"`
	Build        string `json:"build,omitempty"`
	Flavour      string `json:"flavour,omitempty"`
}

// Parse reads an identifier or a database filename.
//
// Accepted forms are Name_Version[_Build[_Flavour]] with an optional .memdb
// suffix, where Version has one to three dot separated numbers.
func Parse(s string) (Info, error) {
	s = strings.TrimSuffix(s, FileExt)
	parts := strings.Split(s, "_")
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}

	info := Info{Name: parts[0]}

	nums := strings.Split(parts[1], ".")
	if len(nums) > 3 {
		return Info{}, fmt.Errorf("%w: %q: too many version components", ErrInvalidIdentifier, s)
	}
	version := [3]uint32{}
	for i, n := range nums {
		v, err := strconv.ParseUint(n, 10, 32)
		if err != nil {
			return Info{}, fmt.Errorf("%w: %q: bad version %q", ErrInvalidIdentifier, s, parts[1])
		}
		version[i] = uint32(v)
	}
	info.VersionMajor, info.VersionMinor, info.VersionPatch = version[0], version[1], version[2]

	if len(parts) > 2 {
		if parts[2] == "" {
			return Info{}, fmt.Errorf("%w: %q: empty build", ErrInvalidIdentifier, s)
		}
		info.Build = parts[2]
	}
	if len(parts) > 3 {
		if parts[3] == "" {
			return Info{}, fmt.Errorf("%w: %q: empty flavour", ErrInvalidIdentifier, s)
		}
		info.Flavour = parts[3]
	}
	return info, nil
}

// ID returns the canonical string form.
func (i Info) ID() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s_%s", i.Name, i.Version())
	if i.Build != "" {
		b.WriteString("_" + i.Build)
		if i.Flavour != "" {
			b.WriteString("_" + i.Flavour)
		}
	}
	return b.String()
}

// Version returns major.minor.patch.
func (i Info) Version() string {
	return fmt.Sprintf("%d.%d.%d", i.VersionMajor, i.VersionMinor, i.VersionPatch)
}

// Filename is the name of the database file in the stash directory.
func (i Info) Filename() string {
	return i.ID() + FileExt
}

func (i Info) String() string { return i.ID() }

// Compare orders identities by name, version, build and flavour.
func Compare(a, b Info) int {
	return cmp.Or(
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.VersionMajor, b.VersionMajor),
		cmp.Compare(a.VersionMinor, b.VersionMinor),
		cmp.Compare(a.VersionPatch, b.VersionPatch),
		cmp.Compare(a.Build, b.Build),
		cmp.Compare(a.Flavour, b.Flavour),
	)
}

// FuzzyMatch scores how close i is to other. Lower is better and ok is false
// when the two identities are unrelated.
func (i Info) FuzzyMatch(other Info) (score int, ok bool) {
	if !strings.EqualFold(i.Name, other.Name) || i.VersionMajor != other.VersionMajor {
		return 0, false
	}
	sameVersion := i.VersionMinor == other.VersionMinor && i.VersionPatch == other.VersionPatch
	switch {
	case sameVersion && i.Build == other.Build && i.Flavour == other.Flavour:
		return 0, true
	case sameVersion && i.Build == other.Build:
		return 1, true
	case sameVersion:
		return 2, true
	case i.VersionMinor == other.VersionMinor:
		return 3, true
	default:
		return 4, true
	}
}
