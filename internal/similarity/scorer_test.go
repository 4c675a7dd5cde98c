package similarity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func sub(id, name string, files ...string) Submission {
	attachments := make([]Attachment, 0, len(files))
	for _, file := range files {
		attachments = append(attachments, Attachment{Name: file})
	}
	return Submission{StudentID: id, StudentName: name, Attachments: attachments}
}

func TestFNV1a32KnownVectors(t *testing.T) {
	require.Equal(t, uint32(2166136261), fnv1a32(""))
	require.Equal(t, uint32(3826002220), fnv1a32("a"))
	require.Equal(t, uint32(3214735720), fnv1a32("foobar"))
}

func TestPairSeedCanonicalisesOrder(t *testing.T) {
	a := sub("s2", "Ben", "b.pdf")
	b := sub("s1", "Ana", "a.pdf")

	require.Equal(t, "asg|s1-s2|a.pdf|b.pdf", PairSeed("asg", a, b))
	require.Equal(t, PairSeed("asg", a, b), PairSeed("asg", b, a))
	require.Equal(t, "asg|s1-s2||", PairSeed("asg", sub("s1", "Ana"), sub("s2", "Ben")))
}

func TestScorerGoldenValues(t *testing.T) {
	scorer := NewScorer(DefaultSkewExponent)
	subs := map[string]Submission{
		"s1": sub("s1", "Ana", "essay.pdf"),
		"s2": sub("s2", "Ben", "essay.pdf"),
		"s3": sub("s3", "Cy"),
		"s4": sub("s4", "Dee", "main.zip", "x"),
		"s5": {StudentID: "s5", StudentName: "Eve"},
		"s6": sub("s6", "Fay", "résumé.txt"),
		"s7": sub("s7", "Gus", "📄.pdf"),
	}

	cases := []struct {
		a, b string
		want int
	}{
		{"s1", "s2", 96},
		{"s1", "s3", 35},
		{"s1", "s4", 94},
		{"s1", "s5", 96},
		{"s1", "s6", 67},
		{"s2", "s3", 97},
		{"s2", "s6", 14},
		{"s3", "s5", 22},
		{"s4", "s5", 53},
		{"s4", "s6", 10},
		{"s5", "s6", 42},
		{"s1", "s7", 71},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s-%s", tc.a, tc.b), func(t *testing.T) {
			require.Equal(t, tc.want, scorer.Score("a-1", subs[tc.a], subs[tc.b]))
		})
	}

	require.Equal(t, 58, scorer.Score("1", sub("1", "", "a.pdf"), sub("2", "", "b.pdf")))
	require.Equal(t, 72, scorer.Score("", Submission{}, Submission{}))
}

func TestScorerDeterministicSymmetricAndBounded(t *testing.T) {
	scorer := NewScorer(DefaultSkewExponent)
	for i := 0; i < 60; i++ {
		a := sub(fmt.Sprintf("stu-%d", i), "A", fmt.Sprintf("file-%d.pdf", i%7))
		b := sub(fmt.Sprintf("stu-%d", i*31+5), "B", fmt.Sprintf("file-%d.zip", i%3))
		assignment := fmt.Sprintf("assignment-%d", i%4)

		first := scorer.Score(assignment, a, b)
		require.Equal(t, first, scorer.Score(assignment, a, b))
		require.Equal(t, first, scorer.Score(assignment, b, a))
		require.GreaterOrEqual(t, first, 0)
		require.LessOrEqual(t, first, 100)
	}
}

func TestScorerExponentShapesDistribution(t *testing.T) {
	low := NewScorer(0.6)
	linear := NewScorer(1)
	a := sub("s1", "Ana", "essay.pdf")
	b := sub("s6", "Fay", "résumé.txt")

	// x^0.6 >= x on [0,1]
	require.GreaterOrEqual(t, low.Score("a-1", a, b), linear.Score("a-1", a, b))
}

func TestNewScorerFallsBackToDefaultExponent(t *testing.T) {
	require.Equal(t, DefaultSkewExponent, NewScorer(0).Exponent())
	require.Equal(t, DefaultSkewExponent, NewScorer(-2).Exponent())
	require.Equal(t, DefaultSkewExponent, Scorer{}.Exponent())
	require.Equal(t, 1.5, NewScorer(1.5).Exponent())
}
