package domain

// TicketCategory classifies the kind of incident being reported.
type TicketCategory string

const (
	CategoryHardware      TicketCategory = "hardware"
	CategorySoftware      TicketCategory = "software"
	CategoryNetwork       TicketCategory = "network"
	CategoryAccountAccess TicketCategory = "account_access"
	CategoryEmail         TicketCategory = "email"
	CategoryClassroomTech TicketCategory = "classroom_tech"
	CategoryLabEquipment  TicketCategory = "lab_equipment"
	CategoryServerInfra   TicketCategory = "server_infrastructure"
	CategoryOther         TicketCategory = "other"
)

var baseCategories = []TicketCategory{
	CategoryHardware,
	CategorySoftware,
	CategoryNetwork,
	CategoryAccountAccess,
	CategoryEmail,
	CategoryOther,
}

var teachingCategories = []TicketCategory{
	CategoryClassroomTech,
	CategoryLabEquipment,
}

// CategoriesForRole returns the categories a submitter with the given
// role may file under. Technicians and admins can file under anything,
// professors additionally get teaching-facility categories.
func CategoriesForRole(role UserRole) []TicketCategory {
	switch role {
	case RoleTechnician, RoleAdmin:
		all := append([]TicketCategory{}, baseCategories...)
		all = append(all, teachingCategories...)
		return append(all, CategoryServerInfra)
	case RoleProfessor:
		all := append([]TicketCategory{}, baseCategories...)
		return append(all, teachingCategories...)
	default:
		return append([]TicketCategory{}, baseCategories...)
	}
}

// CategoryAllowed reports whether the role may file tickets under the category.
func CategoryAllowed(role UserRole, category TicketCategory) bool {
	for _, c := range CategoriesForRole(role) {
		if c == category {
			return true
		}
	}
	return false
}
