// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Input is the run description read from the challenge input JSON.
type Input struct {
	ChallengeInfo ChallengeInfo `json:"challenge_info" yaml:"challenge_info"`
	Documents     []DocumentRef `json:"documents" yaml:"documents"`
	Persona       Persona       `json:"persona" yaml:"persona"`
	JobToBeDone   JobToBeDone   `json:"job_to_be_done" yaml:"job_to_be_done"`
}

// ChallengeInfo is descriptive metadata about the collection.
type ChallengeInfo struct {
	ChallengeID string `json:"challenge_id,omitempty" yaml:"challenge_id,omitempty"`
	TestCase    string `json:"test_case_name,omitempty" yaml:"test_case_name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DocumentRef names one input PDF. Path takes precedence over Filename.
type DocumentRef struct {
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Persona describes who the ranking is for.
type Persona struct {
	Role string `json:"role" yaml:"role"`
}

// JobToBeDone describes what the persona is trying to accomplish.
type JobToBeDone struct {
	Task string `json:"task" yaml:"task"`
}

// Result is the output artifact of one run.
type Result struct {
	Metadata           Metadata             `json:"metadata" yaml:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections" yaml:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis" yaml:"subsection_analysis"`
}

// Metadata records what a Result was computed from.
type Metadata struct {
	InputDocuments      []string `json:"input_documents" yaml:"input_documents"`
	Persona             string   `json:"persona" yaml:"persona"`
	JobToBeDone         string   `json:"job_to_be_done" yaml:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp" yaml:"processing_timestamp"`
}

// ExtractedSection is one entry of the ranked section list. ImportanceRank
// is 1-based.
type ExtractedSection struct {
	Document       string `json:"document" yaml:"document"`
	SectionTitle   string `json:"section_title" yaml:"section_title"`
	ImportanceRank int    `json:"importance_rank" yaml:"importance_rank"`
	PageNumber     int    `json:"page_number" yaml:"page_number"`
}
