package models

// Table is a bookable physical table. Only the identifier is tracked.
type Table struct {
	ID int `gorm:"primaryKey;autoIncrement:false" json:"id"`
}

func (Table) TableName() string {
	return "stoliki"
}
