package model

import (
	"context"
	"time"
)

// AnalysisResult is the response assembled for one resume analysis request.
// Field names are part of the public JSON contract.
type AnalysisResult struct {
	SkillMatch        float64                `json:"skill_match"`
	MissingSkills     []string               `json:"missing_skills"`
	Strengths         []string               `json:"strengths"`
	Weaknesses        []string               `json:"weaknesses"`
	Suggestions       []string               `json:"suggestions"`
	LearningResources map[string]ResourceSet `json:"learning_resources"`
	Summary           string                 `json:"summary"`
	ResumeText        string                 `json:"resume_text"`
	RawAI             map[string]any         `json:"raw_ai"`
}

// ResourceSet maps a learning provider name (YouTube, Coursera, Udemy) to a search URL.
type ResourceSet map[string]string

// SkillRank is one entry of the market trends list.
type SkillRank struct {
	Skill string `json:"skill"`
	Rank  int    `json:"rank"` // 1-based position in the generated list
}

// TrendsPayload is the body of the market trends endpoint. Error is set only
// when the generation call itself failed, in which case TopSkills is empty.
type TrendsPayload struct {
	TopSkills []SkillRank `json:"top_skills"`
	Error     string      `json:"error,omitempty"`
}

// HistoryRecord is one persisted analysis.
type HistoryRecord struct {
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	FileName       string         `json:"file_name"`
	JobDescription string         `json:"job_description"`
	Result         AnalysisResult `json:"result"`
}

// CacheStore is a timestamped key-value store used for the trends cache.
// found is false (with a nil error) when the key has never been written.
type CacheStore interface {
	Get(ctx context.Context, key string) (value []byte, storedAt time.Time, found bool, err error)
	Set(ctx context.Context, key string, value []byte, storedAt time.Time) error
}

// HistoryStore persists completed analyses.
type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) error
	List(ctx context.Context, limit int) ([]HistoryRecord, error)
}
