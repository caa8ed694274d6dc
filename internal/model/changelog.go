package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип записи журнала изменений.
type ChangeKind string

const (
	ChangeKindCreated  ChangeKind = "created"
	ChangeKindUpdated  ChangeKind = "updated"
	ChangeKindArrival  ChangeKind = "arrival"
	ChangeKindDeleted  ChangeKind = "deleted"
	ChangeKindImported ChangeKind = "imported"
)

// change_log — журнал изменений записей приёма.
// Details хранит JSON-снимок затронутых полей.
type ChangeLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Kind ChangeKind `gorm:"type:varchar(32);not null;index"`

	AppointmentID string `gorm:"type:text;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	Details datatypes.JSON `gorm:"type:json"`
}

func (ChangeLog) TableName() string { return "change_log" }
