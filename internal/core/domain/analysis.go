package domain

// QuestionSource names who produced the final question set.
type QuestionSource string

const (
	SourceSegmenter QuestionSource = "segmenter"
	SourceRefiner   QuestionSource = "refiner"
)

// DocumentAnalysis is the full output for one document: the accepted text and
// the questions derived from it.
type DocumentAnalysis struct {
	Filename       string              `json:"filename"`
	Format         Format              `json:"format"`
	Extraction     ExtractionResult    `json:"extraction"`
	Questions      []QuestionCandidate `json:"questions"`
	QuestionSource QuestionSource      `json:"question_source"`
}
