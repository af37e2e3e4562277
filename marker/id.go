package marker

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/grailbio/base/errors"
)

// Kind is the type of a marker.
type Kind uint8

const (
	// UnknownKind is the zero Kind.
	UnknownKind Kind = iota
	// TM is a true marker: a region no other family or reference covers.
	TM
	// JM is a junction marker: a window that straddles the boundary between
	// hit regions.
	JM
	// QM is a quasi-minimal marker: the least covered window of the family.
	QM
)

var kindNames = [...]string{"", "TM", "JM", "QM"}

// String returns the two-letter tag of k.
func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Quasi reports whether k is a junction or quasi-minimal marker.
func (k Kind) Quasi() bool { return k == JM || k == QM }

func parseKind(s string) Kind {
	switch s {
	case "TM":
		return TM
	case "JM":
		return JM
	case "QM":
		return QM
	}
	return UnknownKind
}

// ID identifies an emitted marker.  Its display form is built by String.
type ID struct {
	Family string
	Kind   Kind
	// Score is the coverage sum of a quasi window.  Always zero for true
	// markers.
	Score int
	// Ordinal is the 1-based position of the marker among its family's
	// markers.
	Ordinal int
}

// String returns the marker name: <family>_TM_#NN for true markers and
// <family>_<JM|QM><score>_#NN otherwise.
func (id ID) String() string {
	if id.Kind == TM {
		return fmt.Sprintf("%s_TM_#%02d", id.Family, id.Ordinal)
	}
	return fmt.Sprintf("%s_%s%d_#%02d", id.Family, id.Kind, id.Score, id.Ordinal)
}

var idRE = regexp.MustCompile(`^(.+)_(TM|JM|QM)([0-9]*)_#([0-9]+)$`)

// ParseID decomposes a marker name produced by ID.String.  Text after the
// first space is ignored.
func ParseID(name string) (ID, error) {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' || name[i] == '\t' {
			name = name[:i]
			break
		}
	}
	m := idRE.FindStringSubmatch(name)
	if m == nil {
		return ID{}, errors.E(errors.Invalid, "malformed marker id", name)
	}
	id := ID{Family: m[1], Kind: parseKind(m[2])}
	if m[3] != "" {
		if id.Kind == TM {
			return ID{}, errors.E(errors.Invalid, "true marker with a score", name)
		}
		score, err := strconv.Atoi(m[3])
		if err != nil {
			return ID{}, errors.E(errors.Invalid, err, "marker score", name)
		}
		id.Score = score
	}
	ord, err := strconv.Atoi(m[4])
	if err != nil {
		return ID{}, errors.E(errors.Invalid, err, "marker ordinal", name)
	}
	id.Ordinal = ord
	return id, nil
}
