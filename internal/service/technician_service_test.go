package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestListWithWorkloadVisibleToAnyAuthenticatedCaller(t *testing.T) {
	technicians := newFakeTechnicianRepo()
	addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")
	svc := NewTechnicianService(technicians)

	for _, role := range []domain.Role{
		domain.RoleClient,
		domain.RoleTechnician,
		domain.RoleOperator,
		domain.RoleAdministrator,
	} {
		entries, err := svc.ListWithWorkload(context.Background(), caller("someone", role))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}

func TestListWithWorkloadRequiresCaller(t *testing.T) {
	svc := NewTechnicianService(newFakeTechnicianRepo())

	_, err := svc.ListWithWorkload(context.Background(), nil)
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}
