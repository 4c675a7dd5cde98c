package similarity

import (
	"math"
	"strings"
	"unicode/utf16"
)

const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619

	// DefaultSkewExponent biases scores toward the low-mid range while keeping a high tail.
	DefaultSkewExponent = 0.6
)

// PairScorer computes a similarity percentage in [0, 100] for two submissions of one assignment.
// Implementations must be deterministic and symmetric in a and b.
type PairScorer interface {
	Score(assignmentID string, a, b Submission) int
}

// Scorer is the deterministic stand-in for content comparison. The score is derived from the
// assignment, the pair of student IDs and their first attachment names only.
type Scorer struct {
	exponent float64
}

// NewScorer builds a scorer using the provided skew exponent. Non-positive or non-finite values
// fall back to DefaultSkewExponent.
func NewScorer(exponent float64) Scorer {
	if exponent <= 0 || math.IsNaN(exponent) || math.IsInf(exponent, 0) {
		exponent = DefaultSkewExponent
	}
	return Scorer{exponent: exponent}
}

// Exponent returns the skew exponent in use.
func (s Scorer) Exponent() float64 {
	if s.exponent == 0 {
		return DefaultSkewExponent
	}
	return s.exponent
}

// Score returns the similarity percentage for the pair.
func (s Scorer) Score(assignmentID string, a, b Submission) int {
	draw := xorshift32(fnv1a32(PairSeed(assignmentID, a, b)))
	value := float64(draw) / float64(math.MaxUint32)

	skewed := math.Pow(value, s.Exponent())
	return int(math.Floor(skewed*100 + 0.5))
}

// PairSeed composes the canonical seed "{assignment}|{lowID}-{highID}|{lowName}|{highName}".
// Attachment names follow the sorted ID order so that swapping a and b yields the same seed.
func PairSeed(assignmentID string, a, b Submission) string {
	if b.StudentID < a.StudentID {
		a, b = b, a
	}

	var sb strings.Builder
	sb.WriteString(assignmentID)
	sb.WriteByte('|')
	sb.WriteString(a.StudentID)
	sb.WriteByte('-')
	sb.WriteString(b.StudentID)
	sb.WriteByte('|')
	sb.WriteString(a.FirstAttachmentName())
	sb.WriteByte('|')
	sb.WriteString(b.FirstAttachmentName())
	return sb.String()
}

// fnv1a32 hashes the UTF-16 code units of seed.
func fnv1a32(seed string) uint32 {
	h := fnvOffsetBasis
	for _, unit := range utf16.Encode([]rune(seed)) {
		h ^= uint32(unit)
		h *= fnvPrime
	}
	return h
}

func xorshift32(h uint32) uint32 {
	h ^= h << 13
	h ^= h >> 17
	h ^= h << 5
	return h
}
