package apqc

import (
	"encoding/binary"
	"errors"
)

// TLV tags for the canonical signature encoding, extending the teacher's
// clique_pq.go PQSigTypeMLDSA* tag space to the dual/hybrid shapes this
// layer actually produces.
const (
	tlvTagDual   byte = 0x20
	tlvTagHybrid byte = 0x21

	// tlvHeaderSize is tag(1) + mldsa_len(4) + slhdsa_len(4), the fixed
	// prefix before the variable-length signature bytes — the same
	// type+length-prefixed shape as the teacher's PQSignature.Encode.
	tlvHeaderSize = 1 + 4 + 4
)

var (
	ErrTLVTooShort       = errors.New("apqc: TLV-encoded signature too short")
	ErrTLVUnknownTag     = errors.New("apqc: unrecognized TLV tag")
	ErrTLVLengthMismatch = errors.New("apqc: TLV length field does not match payload")
)

// EncodeDual produces the canonical TLV encoding of a dual signature:
// the dual tag, the two signature lengths, then the ML-DSA and SLH-DSA
// signature bytes.
func EncodeDual(mldsaSig, slhdsaSig []byte) []byte {
	buf := make([]byte, tlvHeaderSize+len(mldsaSig)+len(slhdsaSig))
	offset := 0
	buf[offset] = tlvTagDual
	offset++
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(mldsaSig)))
	offset += 4
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(slhdsaSig)))
	offset += 4
	offset += copy(buf[offset:], mldsaSig)
	copy(buf[offset:], slhdsaSig)
	return buf
}

// DecodeDual parses a TLV-encoded dual signature produced by EncodeDual,
// returning the ML-DSA and SLH-DSA components.
func DecodeDual(data []byte) (mldsaSig, slhdsaSig []byte, err error) {
	if len(data) < tlvHeaderSize {
		return nil, nil, ErrTLVTooShort
	}
	offset := 0
	tag := data[offset]
	offset++
	if tag != tlvTagDual {
		return nil, nil, ErrTLVUnknownTag
	}
	mlLen := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4
	slhLen := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4
	if uint64(offset)+uint64(mlLen)+uint64(slhLen) != uint64(len(data)) {
		return nil, nil, ErrTLVLengthMismatch
	}
	mlSig := make([]byte, mlLen)
	copy(mlSig, data[offset:offset+int(mlLen)])
	offset += int(mlLen)
	slhSig := make([]byte, slhLen)
	copy(slhSig, data[offset:offset+int(slhLen)])
	return mlSig, slhSig, nil
}

// EncodeHybrid extends EncodeDual with the classical component length-
// prefixed on the end, switching the leading tag to tlvTagHybrid so a
// decoder never has to guess which shape it received.
func EncodeHybrid(sig HybridSignResult) []byte {
	dual := EncodeDual(sig.MLDSASignature, sig.SLHDSASignature)
	dual[0] = tlvTagHybrid
	buf := make([]byte, len(dual)+4+len(sig.ECDSASignature))
	copy(buf, dual)
	binary.BigEndian.PutUint32(buf[len(dual):len(dual)+4], uint32(len(sig.ECDSASignature)))
	copy(buf[len(dual)+4:], sig.ECDSASignature)
	return buf
}

// DecodeHybrid parses a TLV-encoded hybrid signature produced by
// EncodeHybrid.
func DecodeHybrid(data []byte) (HybridSignResult, error) {
	if len(data) < tlvHeaderSize {
		return HybridSignResult{}, ErrTLVTooShort
	}
	if data[0] != tlvTagHybrid {
		return HybridSignResult{}, ErrTLVUnknownTag
	}
	patched := make([]byte, len(data))
	copy(patched, data)
	patched[0] = tlvTagDual

	offset := 1
	mlLen := binary.BigEndian.Uint32(patched[offset : offset+4])
	offset += 4
	slhLen := binary.BigEndian.Uint32(patched[offset : offset+4])
	offset += 4
	dualEnd := offset + int(mlLen) + int(slhLen)
	if dualEnd+4 > len(patched) {
		return HybridSignResult{}, ErrTLVTooShort
	}
	mlSig, slhSig, err := DecodeDual(patched[:dualEnd])
	if err != nil {
		return HybridSignResult{}, err
	}
	ecLen := binary.BigEndian.Uint32(patched[dualEnd : dualEnd+4])
	if dualEnd+4+int(ecLen) != len(patched) {
		return HybridSignResult{}, ErrTLVLengthMismatch
	}
	ecSig := make([]byte, ecLen)
	copy(ecSig, patched[dualEnd+4:])
	return HybridSignResult{MLDSASignature: mlSig, SLHDSASignature: slhSig, ECDSASignature: ecSig}, nil
}
