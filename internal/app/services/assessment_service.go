package services

import (
	"context"

	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/pkg/assessment"
)

// AssessmentService produces advisory certificate assessments for reviewers
type AssessmentService interface {
	Analyze(ctx context.Context, actor auth.Actor, in assessment.Input) (*assessment.Result, error)
}

type assessmentServiceImpl struct{}

// NewAssessmentService creates a new AssessmentService
func NewAssessmentService() AssessmentService {
	return &assessmentServiceImpl{}
}

func (s *assessmentServiceImpl) Analyze(_ context.Context, actor auth.Actor, in assessment.Input) (*assessment.Result, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	r := assessment.Assess(in)
	return &r, nil
}
