package stack

import (
	"fmt"
	"math"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/messages"
)

// assess appends the quality messages of an ordered image or frame list.
func assess(ledger *messages.Ledger, recs []instances.Instance) {
	if len(recs) < 2 {
		ledger.Add(messages.NotReconstructable)
		return
	}

	reconstructable := true

	for _, r := range recs {
		if len(r.Floats(constants.ImagePositionPatient)) != 3 {
			ledger.Add(messages.NoPositionInformation)
			ledger.Add(messages.NotReconstructable)
			return
		}
	}

	if !consistentInts(recs, constants.Rows) || !consistentInts(recs, constants.Columns) {
		ledger.Add(messages.InconsistentDimensions)
		reconstructable = false
	}
	if !consistentInts(recs, constants.SamplesPerPixel) {
		ledger.Add(messages.InconsistentComponents)
		reconstructable = false
	}

	orientation := recs[0].Floats(constants.ImageOrientationPatient)
	for _, r := range recs[1:] {
		if !sameOrientation(orientation, r.Floats(constants.ImageOrientationPatient)) {
			ledger.Add(messages.InconsistentOrientations)
			reconstructable = false
			orientation = nil
			break
		}
	}

	if len(orientation) == 6 {
		switch spacing(recs, orientation) {
		case spacingDuplicate:
			ledger.Add(messages.InconsistentPositionInformation)
			reconstructable = false
		case spacingIrregular:
			ledger.Add(messages.IrregularSpacing, irregularText(recs, orientation))
			reconstructable = false
		}
	} else {
		reconstructable = false
	}

	if !reconstructable {
		ledger.Add(messages.NotReconstructable)
	}
}

// consistentInts reports whether every record that carries key agrees.
func consistentInts(recs []instances.Instance, key string) bool {
	var (
		first int
		seen  bool
	)
	for _, r := range recs {
		v, ok := r.Int(key)
		if !ok {
			continue
		}
		if !seen {
			first, seen = v, true
			continue
		}
		if v != first {
			return false
		}
	}
	return true
}

func sameOrientation(a, b []float64) bool {
	if len(a) != 6 || len(b) != 6 {
		return len(a) == len(b)
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > constants.OrientationTolerance {
			return false
		}
	}
	return true
}

type spacingResult int

const (
	spacingRegular spacingResult = iota
	spacingIrregular
	spacingDuplicate
)

// distances projects each position onto the slice normal.
func distances(recs []instances.Instance, orientation []float64) []float64 {
	row, col := orientation[:3], orientation[3:]
	normal := []float64{
		row[1]*col[2] - row[2]*col[1],
		row[2]*col[0] - row[0]*col[2],
		row[0]*col[1] - row[1]*col[0],
	}
	out := make([]float64, len(recs))
	for i, r := range recs {
		p := r.Floats(constants.ImagePositionPatient)
		out[i] = p[0]*normal[0] + p[1]*normal[1] + p[2]*normal[2]
	}
	return out
}

func spacing(recs []instances.Instance, orientation []float64) spacingResult {
	d := distances(recs, orientation)
	gaps := make([]float64, 0, len(d)-1)
	for i := 1; i < len(d); i++ {
		gap := math.Abs(d[i] - d[i-1])
		if gap < 1e-6 {
			return spacingDuplicate
		}
		gaps = append(gaps, gap)
	}
	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	for _, g := range gaps {
		if math.Abs(g-mean) > constants.SpacingTolerance*mean {
			return spacingIrregular
		}
	}
	return spacingRegular
}

func irregularText(recs []instances.Instance, orientation []float64) string {
	d := distances(recs, orientation)
	lo, hi := math.Inf(1), 0.0
	for i := 1; i < len(d); i++ {
		gap := math.Abs(d[i] - d[i-1])
		lo, hi = math.Min(lo, gap), math.Max(hi, gap)
	}
	return fmt.Sprintf("%s Slice gaps range from %.3gmm to %.3gmm.", messages.IrregularSpacing.Text(), lo, hi)
}
