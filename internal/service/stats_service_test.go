package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
)

func newTestStatsService(stats *domain.Statistics) *StatsService {
	requests := newFakeRequestRepo()
	requests.stats = stats
	return NewStatsService(requests, nil, 0, zap.NewNop())
}

func TestSummaryRoundsAverageToOneDecimal(t *testing.T) {
	svc := newTestStatsService(&domain.Statistics{
		TotalRequests:     10,
		CompletedRequests: 4,
		InRepairRequests:  3,
		AvgDays:           2.3456,
		ByStatus:          []domain.StatusCount{{Status: domain.StatusNew, Count: 3}},
		ByType:            []domain.TypeCount{{EquipmentType: "Кондиционер", Count: 10}},
	})

	stats, err := svc.Summary(context.Background(), caller("op1", domain.RoleOperator))
	require.NoError(t, err)
	assert.Equal(t, 2.3, stats.AvgDays)
	assert.Equal(t, 10, stats.TotalRequests)
}

func TestSummaryForbiddenForClientAndTechnician(t *testing.T) {
	svc := newTestStatsService(&domain.Statistics{})

	_, err := svc.Summary(context.Background(), caller("client1", domain.RoleClient))
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, err = svc.Summary(context.Background(), caller("tech1", domain.RoleTechnician))
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestSummaryNormalizesEmptyBreakdowns(t *testing.T) {
	svc := newTestStatsService(&domain.Statistics{})

	stats, err := svc.Summary(context.Background(), caller("admin", domain.RoleAdministrator))
	require.NoError(t, err)
	assert.NotNil(t, stats.ByStatus)
	assert.NotNil(t, stats.ByType)
}
