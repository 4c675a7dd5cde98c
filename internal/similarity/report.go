// Package similarity scores submission pairs for an assignment and clusters students whose
// submissions look alike into suspect groups.
package similarity

// DefaultThreshold is the inclusive percentage at which a pair counts as highly similar.
const DefaultThreshold = 70

// Attachment describes one file attached to a submission.
type Attachment struct {
	Name string
	URL  string
}

// Submission is one student's attempt at an assignment.
type Submission struct {
	StudentID   string
	StudentName string
	Attachments []Attachment
}

// FirstAttachmentName returns the name of the first attachment or an empty string.
func (s Submission) FirstAttachmentName() string {
	if len(s.Attachments) == 0 {
		return ""
	}
	return s.Attachments[0].Name
}

// Student returns the identity tuple used in reports.
func (s Submission) Student() Student {
	return Student{ID: s.StudentID, Name: s.StudentName}
}

// Student identifies a compared student.
type Student struct {
	ID   string
	Name string
}

// PairScore is the similarity between two students' submissions.
type PairScore struct {
	A       Student
	B       Student
	Percent int
}

// Report is the full similarity view of one assignment.
type Report struct {
	Pairs             []PairScore
	HighPairs         []PairScore
	Groups            [][]Student
	FlaggedStudentIDs []string
	Threshold         int
}

// Engine builds reports with a configurable scorer and threshold.
type Engine struct {
	scorer    PairScorer
	threshold int
}

// Option customises an Engine.
type Option func(*Engine)

// WithThreshold overrides the high similarity threshold. Values outside [0, 100] are ignored.
func WithThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold >= 0 && threshold <= 100 {
			e.threshold = threshold
		}
	}
}

// WithScorer replaces the pair scorer.
func WithScorer(scorer PairScorer) Option {
	return func(e *Engine) {
		if scorer != nil {
			e.scorer = scorer
		}
	}
}

// NewEngine returns an engine using the deterministic Scorer and DefaultThreshold unless overridden.
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		scorer:    NewScorer(DefaultSkewExponent),
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Threshold returns the inclusive cutoff used for high pairs.
func (e *Engine) Threshold() int {
	return e.threshold
}

// BuildReport scores every unordered pair of submissions, keeps the pairs at or above the
// threshold, clusters them and collects the flagged students.
func (e *Engine) BuildReport(assignmentID string, submissions []Submission) Report {
	n := len(submissions)
	report := Report{
		Pairs:             make([]PairScore, 0, pairCount(n)),
		HighPairs:         make([]PairScore, 0),
		FlaggedStudentIDs: make([]string, 0),
		Threshold:         e.threshold,
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			report.Pairs = append(report.Pairs, PairScore{
				A:       submissions[i].Student(),
				B:       submissions[j].Student(),
				Percent: e.scorer.Score(assignmentID, submissions[i], submissions[j]),
			})
		}
	}

	for _, pair := range report.Pairs {
		if pair.Percent >= e.threshold {
			report.HighPairs = append(report.HighPairs, pair)
		}
	}

	report.Groups = Cluster(submissions, report.HighPairs)

	seen := make(map[string]struct{})
	for _, pair := range report.HighPairs {
		for _, id := range [2]string{pair.A.ID, pair.B.ID} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			report.FlaggedStudentIDs = append(report.FlaggedStudentIDs, id)
		}
	}

	return report
}

// BestMatch returns the highest score between studentID's submission and any other submission.
// A student without a submission scores 0. Pairs are scored in student ID order, so a pair scores
// the same whichever of its two students is queried.
func (e *Engine) BestMatch(assignmentID string, submissions []Submission, studentID string) int {
	var mine *Submission
	for i := range submissions {
		if submissions[i].StudentID == studentID {
			mine = &submissions[i]
			break
		}
	}
	if mine == nil {
		return 0
	}

	best := 0
	for _, other := range submissions {
		if other.StudentID == studentID {
			continue
		}
		if score := e.scorer.Score(assignmentID, *mine, other); score > best {
			best = score
		}
	}
	return best
}

func pairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
