package service

import (
	"testing"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

func TestApplyStandardAward(t *testing.T) {
	tests := []struct {
		name       string
		kind       domain.ActivityKind
		basePoints int
		wantPoints int
		wantValid  bool
	}{
		{
			name:       "negative points take the lesson standard award",
			kind:       domain.KindLessonCompletion,
			basePoints: -1,
			wantPoints: 50,
			wantValid:  true,
		},
		{
			name:       "negative points take the module standard award",
			kind:       domain.KindModuleCompletion,
			basePoints: -5,
			wantPoints: 200,
			wantValid:  true,
		},
		{
			name:       "negative points take the challenge standard award",
			kind:       domain.KindDailyChallenge,
			basePoints: -1,
			wantPoints: 150,
			wantValid:  true,
		},
		{
			name:       "explicit points pass through untouched",
			kind:       domain.KindAssessmentPassed,
			basePoints: 80,
			wantPoints: 80,
			wantValid:  true,
		},
		{
			name:       "zero points pass through untouched",
			kind:       domain.KindCommunityPost,
			basePoints: 0,
			wantPoints: 0,
			wantValid:  true,
		},
		{
			name:       "unknown kind still fails validation",
			kind:       domain.ActivityKind("unknown_kind"),
			basePoints: -1,
			wantPoints: 0,
			wantValid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := domain.ActivityEvent{
				UserID:     "user-1",
				Kind:       tt.kind,
				BasePoints: tt.basePoints,
			}
			applyStandardAward(&event)

			if event.BasePoints != tt.wantPoints {
				t.Errorf("base points = %d, want %d", event.BasePoints, tt.wantPoints)
			}

			err := engine.ValidateActivity(event.Activity())
			if tt.wantValid && err != nil {
				t.Errorf("ValidateActivity() = %v, want nil", err)
			}
			if !tt.wantValid && err == nil {
				t.Error("ValidateActivity() = nil, want error")
			}
		})
	}
}
