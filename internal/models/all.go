package models

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&OrganizationMember{},
		&OrganizationInvitation{},
		&Board{},
		&BoardMember{},
		&BoardInvitation{},
		&Column{},
		&Card{},
		&Label{},
		&CardMember{},
		&Checklist{},
		&ChecklistItem{},
		&Comment{},
		&CardActivity{},
		&Attachment{},
		&AuditLog{},
	}
}
