// Package storage persists client data and scoring results in SQLite.
package storage

import (
	"context"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/pipeline"
)

// Recorder persists scoring output.
type Recorder interface {
	ReplaceClientResults(ctx context.Context, res pipeline.Result, runID string) error
	RecordRun(ctx context.Context, s *pipeline.Summary) error
	SetPushNotification(ctx context.Context, clientCode, rank int, text string) error
	Close() error
}

// RecommendationRow is one client's line of the recommendation table.
// Empty product slots mean fewer than four recommendations.
type RecommendationRow struct {
	ClientCode     int
	Name           string
	CurrentProduct string
	Products       [4]string
	Benefits       [4]float64
}

// BenefitRow is a stored benefit with its raw details JSON.
type BenefitRow struct {
	ClientCode       int
	ProductName      string
	PotentialBenefit float64
	BenefitType      string
	Confidence       float64
	DetailsJSON      string
}

// PushCandidate is a ranked recommendation joined with the data a push text needs.
type PushCandidate struct {
	Profile        model.ClientProfile
	Recommendation model.Recommendation
	Details        model.CalculationDetails
}
