package model

import (
	"strings"

	"github.com/google/uuid"
)

// Статус приёма: пациент либо записан, либо уже пришёл.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusArrived   Status = "arrived"
)

// Флаг отправки счёта.
type InvoiceFlag string

const (
	InvoiceYes InvoiceFlag = "yes"
	InvoiceNo  InvoiceFlag = "no"
)

// ServicesSeparator — разделитель списка услуг в хранимой строке.
const ServicesSeparator = ";"

// appointments — единственная таблица хранилища. Все колонки текстовые:
// date в форме YYYY-MM-DD, времена в форме HH:MM, пустая строка = не задано.
type Appointment struct {
	ID          string      `gorm:"type:text;primaryKey"`
	Date        string      `gorm:"type:text;index"`
	PlannedTime string      `gorm:"type:text"`
	Patient     string      `gorm:"type:text;not null"`
	Status      Status      `gorm:"type:text;not null;default:'scheduled'"`
	ArrivalTime string      `gorm:"type:text"`
	LeaveTime   string      `gorm:"type:text"`
	Services    string      `gorm:"type:text"`
	InvoiceSent InvoiceFlag `gorm:"type:text;not null;default:'no'"`
}

func (Appointment) TableName() string { return "appointments" }

// NewAppointment создаёт запись с дефолтами жизненного цикла:
// статус scheduled, времена и услуги пустые, счёт не отправлен.
func NewAppointment(patient, isoDate, plannedTime string) *Appointment {
	return &Appointment{
		ID:          NewID(),
		Date:        isoDate,
		PlannedTime: plannedTime,
		Patient:     patient,
		Status:      StatusScheduled,
		InvoiceSent: InvoiceNo,
	}
}

// NewID генерирует идентификатор записи — hex-форма UUID без дефисов.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// DeriveStatus выводит статус из времени прихода: непустое время = arrived.
func DeriveStatus(arrivalTime string) Status {
	if arrivalTime != "" {
		return StatusArrived
	}
	return StatusScheduled
}

// ParseServices разбирает хранимую строку услуг в список.
// Пустые элементы отбрасываются, порядок сохраняется.
func ParseServices(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ServicesSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinServices собирает список услуг обратно в хранимую строку.
func JoinServices(services []string) string {
	var out []string
	for _, s := range services {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ServicesSeparator)
}

// NormalizeServicesText канонизирует пользовательский ввод услуг:
// запятые (включая полноширинную) приводятся к точке с запятой,
// пробелы вокруг элементов срезаются, пустые элементы выбрасываются.
func NormalizeServicesText(s string) string {
	s = strings.ReplaceAll(s, "，", ServicesSeparator)
	s = strings.ReplaceAll(s, ",", ServicesSeparator)
	return JoinServices(strings.Split(s, ServicesSeparator))
}
