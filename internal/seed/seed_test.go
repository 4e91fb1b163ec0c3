package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestRoleFromLabel(t *testing.T) {
	assert.Equal(t, domain.RoleManager, roleFromLabel("Менеджер"))
	assert.Equal(t, domain.RoleTechnician, roleFromLabel("Специалист"))
	assert.Equal(t, domain.RoleOperator, roleFromLabel(" оператор "))
	assert.Equal(t, domain.RoleClient, roleFromLabel("Заказчик"))
	assert.Equal(t, domain.RoleAdministrator, roleFromLabel("ADMINISTRATOR"))
	assert.Equal(t, domain.RoleClient, roleFromLabel("что-то странное"))
	assert.Equal(t, domain.RoleClient, roleFromLabel(""))
}

func TestStatusFromLabel(t *testing.T) {
	assert.Equal(t, domain.StatusNew, statusFromLabel("Новая заявка"))
	assert.Equal(t, domain.StatusInRepair, statusFromLabel("В процессе ремонта"))
	assert.Equal(t, domain.StatusCompleted, statusFromLabel("Завершена"))
	assert.Equal(t, domain.StatusAwaitingParts, statusFromLabel("Ожидание запчастей"))
	assert.Equal(t, domain.StatusCompleted, statusFromLabel("COMPLETED"))
	assert.Equal(t, domain.StatusNew, statusFromLabel("непонятно"))
}

func TestParseTimeLayouts(t *testing.T) {
	parsed, err := parseTime("2023-06-06 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 6, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = parseTime("2023-05-05")
	require.NoError(t, err)
	assert.Equal(t, 2023, parsed.Year())

	_, err = parseTime("")
	assert.Error(t, err)

	_, err = parseTime("not a date")
	assert.Error(t, err)

	fallback := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, fallback, parseTimeOr("garbage", fallback))
}

func TestCellLookup(t *testing.T) {
	headers := map[string]int{"login": 0, "password": 1, "fio": 2}
	row := []string{" admin ", "admin123"}

	assert.Equal(t, "admin", cell(row, headers, "login"))
	assert.Equal(t, "admin123", cell(row, headers, "password"))
	assert.Empty(t, cell(row, headers, "fio"))
	assert.Empty(t, cell(row, headers, "missing"))
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("true"))
	assert.True(t, parseBool("1"))
	assert.False(t, parseBool("0"))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("да"))
}
