package marker

import "github.com/grailbio/base/errors"

// Opts holds the marker selection parameters.
type Opts struct {
	// MarkerLength is the minimum length of a true marker.
	MarkerLength int
	// TotalLength caps the summed length of the markers emitted for one family.
	TotalLength int
	// QMLength is the length of junction and quasi-minimal windows.
	QMLength int
	// QThresh is the largest coverage sum a quasi-minimal window may have.
	QThresh int
	// ShortRegion is the number of residues of a junction window that every
	// single hit must leave uncovered.  Zero means floor(0.4*QMLength).
	ShortRegion int
	// XLimit is the largest number of 'X' residues a junction window may hold.
	XLimit int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	MarkerLength: 8,   // --markerlength
	TotalLength:  300, // --totlength
	QMLength:     33,  // --qmlength
	QThresh:      1,   // --qthresh
	ShortRegion:  0,   // derived from QMLength
	XLimit:       1,   // --xlimit
}

// Validate checks that o describes a usable configuration.
func (o Opts) Validate() error {
	switch {
	case o.MarkerLength <= 0:
		return errors.E(errors.Invalid, "marker length must be positive")
	case o.TotalLength < o.MarkerLength:
		return errors.E(errors.Invalid, "total marker length is shorter than the marker length")
	case o.QMLength <= 0:
		return errors.E(errors.Invalid, "quasi marker length must be positive")
	case o.QThresh < 0 || o.XLimit < 0 || o.ShortRegion < 0:
		return errors.E(errors.Invalid, "negative marker threshold")
	case o.ShortRegionLen() < 1 || o.ShortRegionLen() >= o.WindowLen():
		return errors.E(errors.Invalid, "junction short region must be shorter than the quasi marker window")
	}
	return nil
}

// WindowLen is the length of junction and quasi-minimal windows, so that a
// single quasi marker never exceeds the family budget.
func (o Opts) WindowLen() int {
	if o.TotalLength < o.QMLength {
		return o.TotalLength
	}
	return o.QMLength
}

// ShortRegionLen returns ShortRegion, or its derived value when unset.
func (o Opts) ShortRegionLen() int {
	if o.ShortRegion > 0 {
		return o.ShortRegion
	}
	return o.QMLength * 4 / 10
}
