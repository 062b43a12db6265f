package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoriesForRole(t *testing.T) {
	student := CategoriesForRole(RoleStudent)
	require.Contains(t, student, CategoryHardware)
	require.Contains(t, student, CategoryOther)
	require.NotContains(t, student, CategoryClassroomTech)
	require.NotContains(t, student, CategoryServerInfra)

	professor := CategoriesForRole(RoleProfessor)
	require.Contains(t, professor, CategoryClassroomTech)
	require.Contains(t, professor, CategoryLabEquipment)
	require.NotContains(t, professor, CategoryServerInfra)

	for _, role := range []UserRole{RoleTechnician, RoleAdmin} {
		categories := CategoriesForRole(role)
		require.Contains(t, categories, CategoryServerInfra)
		require.Contains(t, categories, CategoryClassroomTech)
		require.Contains(t, categories, CategoryHardware)
	}
}

func TestCategoryAllowed(t *testing.T) {
	require.True(t, CategoryAllowed(RoleStudent, CategoryEmail))
	require.False(t, CategoryAllowed(RoleStudent, CategoryLabEquipment))
	require.True(t, CategoryAllowed(RoleProfessor, CategoryLabEquipment))
	require.False(t, CategoryAllowed(RoleProfessor, CategoryServerInfra))
	require.True(t, CategoryAllowed(RoleAdmin, CategoryServerInfra))
	require.False(t, CategoryAllowed(RoleStudent, TicketCategory("parking")))
}

func TestValidRole(t *testing.T) {
	for _, role := range UserRoles() {
		require.True(t, ValidRole(role))
	}
	require.False(t, ValidRole(UserRole("janitor")))
	require.False(t, ValidRole(UserRole("")))
}

func TestTicketIsTerminal(t *testing.T) {
	require.False(t, (&Ticket{Status: TicketStatusNew}).IsTerminal())
	require.False(t, (&Ticket{Status: TicketStatusInProgress}).IsTerminal())
	require.True(t, (&Ticket{Status: TicketStatusResolved}).IsTerminal())
	require.True(t, (&Ticket{Status: TicketStatusClosed}).IsTerminal())
}
