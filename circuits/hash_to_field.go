package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"
)

// hash_to_field for BLS12-381 G2: expand_message_xmd over SHA-256 followed by
// reduction of 64-byte chunks into the base field. COUNT = 2 field extensions
// of degree M = 2 with L = 64 bytes each.

const (
	htfCount = 2
	htfM     = 2
	htfL     = 64
)

// I2OSP is the big-endian fixed-length integer-to-bytes encoding. The values
// here are loop counters and lengths, known at compile time and
// bounds-checked.
func I2OSP(v, l int) ([]uints.U8, error) {
	if l >= 31 {
		return nil, fmt.Errorf("i2osp: %d bytes exceeds the scalar capacity", l)
	}
	if v < 0 || (l < 8 && v >= 1<<(8*l)) {
		return nil, fmt.Errorf("i2osp: %d does not fit %d bytes", v, l)
	}
	out := make([]uints.U8, l)
	for i := l - 1; i >= 0; i-- {
		out[i] = uints.NewU8(uint8(v & 0xff))
		v >>= 8
	}
	return out, nil
}

// ExpandMessageXMD produces lenInBytes uniform bytes from msg and dst with
// H = SHA-256 (B = 32, r_in_bytes = 64).
func ExpandMessageXMD(api frontend.API, msg, dst []uints.U8, lenInBytes int) ([]uints.U8, error) {
	const (
		bInBytes = 32
		rInBytes = 64
	)

	ell := (lenInBytes + bInBytes - 1) / bInBytes
	if ell >= 255 {
		return nil, fmt.Errorf("expand_message_xmd: %d blocks exceeds the 254 block limit", ell)
	}
	if len(dst) >= 256 {
		return nil, fmt.Errorf("expand_message_xmd: DST too long")
	}

	// DST' = DST || I2OSP(len(DST), 1)
	dstLen, err := I2OSP(len(dst), 1)
	if err != nil {
		return nil, err
	}
	dstPrime := make([]uints.U8, 0, len(dst)+1)
	dstPrime = append(dstPrime, dst...)
	dstPrime = append(dstPrime, dstLen...)

	zPad := make([]uints.U8, rInBytes)
	for i := range zPad {
		zPad[i] = uints.NewU8(0)
	}
	lIBStr, err := I2OSP(lenInBytes, 2)
	if err != nil {
		return nil, err
	}

	bapi, err2 := uints.NewBytes(api)
	if err2 != nil {
		return nil, fmt.Errorf("new bytes api: %w", err2)
	}

	// b_0 = H(Z_pad || msg || l_i_b_str || 0x00 || DST')
	h0, err := sha2.New(api)
	if err != nil {
		return nil, fmt.Errorf("sha2: %w", err)
	}
	h0.Write(zPad)
	h0.Write(msg)
	h0.Write(lIBStr)
	h0.Write([]uints.U8{uints.NewU8(0)})
	h0.Write(dstPrime)
	b0 := h0.Sum()

	// b_1 = H(b_0 || 0x01 || DST')
	h1, err := sha2.New(api)
	if err != nil {
		return nil, fmt.Errorf("sha2: %w", err)
	}
	h1.Write(b0)
	h1.Write([]uints.U8{uints.NewU8(1)})
	h1.Write(dstPrime)
	b1 := h1.Sum()

	uniform := make([]uints.U8, 0, ell*bInBytes)
	uniform = append(uniform, b1...)
	prev := b1
	for i := 2; i <= ell; i++ {
		// b_i = H(strxor(b_0, b_{i-1}) || I2OSP(i, 1) || DST')
		t := make([]uints.U8, bInBytes)
		for j := range t {
			t[j] = bapi.Xor(b0[j], prev[j])
		}
		hi, err := sha2.New(api)
		if err != nil {
			return nil, fmt.Errorf("sha2: %w", err)
		}
		idx, err := I2OSP(i, 1)
		if err != nil {
			return nil, err
		}
		hi.Write(t)
		hi.Write(idx)
		hi.Write(dstPrime)
		bi := hi.Sum()
		uniform = append(uniform, bi...)
		prev = bi
	}
	return uniform[:lenInBytes], nil
}

// HashToField maps a message to two Fp2 elements. Each 64-byte chunk is read
// big-endian, repacked into 55-bit registers and reduced mod q through the
// usual fold-and-carry steps with a widened carry bound.
func (f *Field) HashToField(msg []uints.U8) ([htfCount]E2, error) {
	dst := make([]uints.U8, len(DomainSeparatorTag))
	for i, b := range DomainSeparatorTag {
		dst[i] = uints.NewU8(b)
	}
	uniform, err := ExpandMessageXMD(f.api, msg, dst, htfCount*htfM*htfL)
	if err != nil {
		return [htfCount]E2{}, err
	}

	bapi, err := uints.NewBytes(f.api)
	if err != nil {
		return [htfCount]E2{}, err
	}

	var out [htfCount]E2
	for i := 0; i < htfCount; i++ {
		var coords [htfM][]frontend.Variable
		for j := 0; j < htfM; j++ {
			chunk := uniform[htfL*(j+i*htfM) : htfL*(j+i*htfM)+htfL]
			coords[j] = f.reduceWideBytes(bapi, chunk)
		}
		out[i] = E2{A0: coords[0], A1: coords[1]}
	}
	return out, nil
}

// reduceWideBytes interprets 64 big-endian bytes as an integer and reduces it
// to canonical registers mod q.
func (f *Field) reduceWideBytes(bapi *uints.Bytes, chunk []uints.U8) []frontend.Variable {
	numRegs := (8*htfL + f.N - 1) / f.N
	bits := make([]frontend.Variable, 8*htfL)
	for i := 0; i < htfL; i++ {
		// little-endian byte order, least significant bit first
		byteBits := f.api.ToBinary(bapi.Value(chunk[htfL-1-i]), 8)
		copy(bits[i*8:], byteBits)
	}
	regs := make([]frontend.Variable, numRegs)
	for l := 0; l < numRegs; l++ {
		lo := l * f.N
		hi := lo + f.N
		if hi > len(bits) {
			hi = len(bits)
		}
		regs[l] = f.api.FromBinary(bits[lo:hi]...)
	}
	reduced := f.PrimeReduce(Signed{Limbs: regs, Bits: f.N})
	return f.CarryModP(reduced)
}
