// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Section is a contiguous span of document content under a detected or
// inferred title. Document is empty until the caller tags it.
type Section struct {
	Title      string  `json:"title" yaml:"title"`
	PageNumber int     `json:"page_number" yaml:"page_number"`
	Content    string  `json:"content" yaml:"content"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Document   string  `json:"document,omitempty" yaml:"document,omitempty"`
}

// ScoredSection is a Section with the ranker's relevance score.
type ScoredSection struct {
	Section        `yaml:",inline"`
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// SubsectionAnalysis holds the key sentences extracted from a ranked section.
type SubsectionAnalysis struct {
	Document    string `json:"document" yaml:"document"`
	RefinedText string `json:"refined_text" yaml:"refined_text"`
	PageNumber  int    `json:"page_number" yaml:"page_number"`
}
