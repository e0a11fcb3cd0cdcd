package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// Map-reduce aggregation of the committee public keys under the aggregation
// bitmap. Layer l of the reduction tree pairs adjacent outputs of layer l-1,
// so a multi-core witness generator can evaluate each layer in parallel; the
// log-depth shape exists for exactly that reason.

// G1AddWithBits adds two candidate keys. A bit of 0 means the slot is empty;
// the result bit is the OR of the inputs, with the group law selected from
// the flagged adder.
func (f *Field) G1AddWithBits(a, b G1Point, bitA, bitB frontend.Variable) (G1Point, frontend.Variable) {
	f.api.AssertIsBoolean(bitA)
	f.api.AssertIsBoolean(bitB)
	sum := f.EllipticCurveAdd(
		OptG1{Point: a, IsInfinity: f.api.Sub(1, bitA)},
		OptG1{Point: b, IsInfinity: f.api.Sub(1, bitB)},
	)
	outBit := f.api.Sub(1, sum.IsInfinity)
	f.api.AssertIsBoolean(outBit)
	return sum.Point, outBit
}

// G1Reduce halves a layer of candidate keys.
func (f *Field) G1Reduce(points []G1Point, bits []frontend.Variable) ([]G1Point, []frontend.Variable) {
	if len(points)%2 != 0 {
		panic("G1Reduce: batch size must be even")
	}
	half := len(points) / 2
	outPoints := make([]G1Point, half)
	outBits := make([]frontend.Variable, half)
	for i := 0; i < half; i++ {
		outPoints[i], outBits[i] = f.G1AddWithBits(points[2*i], points[2*i+1], bits[2*i], bits[2*i+1])
	}
	return outPoints, outBits
}

// G1AddMany reduces 2^l candidate keys to their aggregate. The second return
// is 1 iff no key was selected (the aggregate is the point at infinity).
func (f *Field) G1AddMany(points []G1Point, bits []frontend.Variable) (G1Point, frontend.Variable) {
	if len(points) != len(bits) {
		panic("G1AddMany: points and bits disagree")
	}
	n := len(points)
	if n == 0 || n&(n-1) != 0 {
		panic("G1AddMany: size must be a power of two")
	}
	for len(points) > 1 {
		points, bits = f.G1Reduce(points, bits)
	}
	return points[0], f.api.Sub(1, bits[0])
}
