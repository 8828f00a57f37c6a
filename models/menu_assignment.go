package models

// MenuAssignment links a menu list to a table.
type MenuAssignment struct {
	MenuID  string `gorm:"type:varchar(36);primaryKey" json:"menu_id"`
	TableID string `gorm:"type:varchar(36);primaryKey" json:"table_id"`
	Table   *Table `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (MenuAssignment) TableName() string {
	return "menu_assigned_tables"
}
