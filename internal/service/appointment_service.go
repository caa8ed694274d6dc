package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/logging"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/repository"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/timeline"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/transfer"
)

// ErrValidation — некорректный ввод: пустое имя, неразбираемая дата
// или время. Операция прерывается до обращения к хранилищу.
var ErrValidation = errors.New("validation failed")

const (
	dateLayoutISO = "2006-01-02"
	dateLayoutDMY = "02-01-2006"
)

// AppointmentService — прикладные операции над записями приёма.
// Все мутации дополнительно пишутся в журнал изменений; отказ журнала
// логируется и не валит пользовательскую операцию.
type AppointmentService struct {
	appts repository.AppointmentRepository
	log   repository.ChangeLogRepository
}

func NewAppointmentService(
	appts repository.AppointmentRepository,
	log repository.ChangeLogRepository,
) *AppointmentService {
	return &AppointmentService{
		appts: appts,
		log:   log,
	}
}

// Query — параметры выборки. NameContains — чувствительный к регистру
// поиск подстроки в имени пациента, применяется поверх выборки из
// хранилища.
type Query struct {
	Filter       repository.Filter
	NameContains string
}

// TodayQuery ограничивает выборку сегодняшним днём.
func TodayQuery(now time.Time) Query {
	day := now.Format(dateLayoutISO)
	return Query{Filter: repository.Filter{DateFrom: day, DateTo: day}}
}

// MonthQuery ограничивает выборку текущим календарным месяцем.
func MonthQuery(now time.Time) Query {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return Query{Filter: repository.Filter{
		DateFrom: first.Format(dateLayoutISO),
		DateTo:   last.Format(dateLayoutISO),
	}}
}

// Create заводит новую запись. Имя обязательно; дата принимается как
// DD-MM-YYYY или YYYY-MM-DD и канонизируется в ISO на границе.
func (s *AppointmentService) Create(ctx context.Context, patient, dateInput, plannedTime string) (*model.Appointment, error) {
	patient = strings.TrimSpace(patient)
	if patient == "" {
		return nil, fmt.Errorf("%w: patient name must not be empty", ErrValidation)
	}

	isoDate, err := NormalizeDate(dateInput)
	if err != nil {
		return nil, err
	}
	planned, err := timeline.ParseClock(plannedTime)
	if err != nil {
		return nil, fmt.Errorf("%w: planned time: %v", ErrValidation, err)
	}

	appt := model.NewAppointment(patient, isoDate, planned.String())
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logChange(ctx, model.ChangeKindCreated, appt.ID, map[string]any{
		"patient":      appt.Patient,
		"date":         appt.Date,
		"planned_time": appt.PlannedTime,
	})
	return appt, nil
}

// UpdateInput — частичное редактирование: nil-поле не меняется,
// пустая строка в ArrivalTime/LeaveTime/Services означает очистку.
type UpdateInput struct {
	Patient     *string
	Date        *string
	PlannedTime *string
	ArrivalTime *string
	LeaveTime   *string
	Services    *[]string
	InvoiceSent *model.InvoiceFlag
}

// Update валидирует заданные поля и применяет их одним стейтментом.
// Несуществующий id — repository.ErrNotFound.
func (s *AppointmentService) Update(ctx context.Context, id string, in UpdateInput) error {
	var patch repository.Patch
	changed := map[string]any{}

	if in.Patient != nil {
		p := strings.TrimSpace(*in.Patient)
		if p == "" {
			return fmt.Errorf("%w: patient name must not be empty", ErrValidation)
		}
		patch.Patient = &p
		changed["patient"] = p
	}
	if in.Date != nil {
		iso, err := NormalizeDate(*in.Date)
		if err != nil {
			return err
		}
		patch.Date = &iso
		changed["date"] = iso
	}
	if in.PlannedTime != nil {
		c, err := timeline.ParseClock(*in.PlannedTime)
		if err != nil {
			return fmt.Errorf("%w: planned time: %v", ErrValidation, err)
		}
		canonical := c.String()
		patch.PlannedTime = &canonical
		changed["planned_time"] = canonical
	}
	if in.ArrivalTime != nil {
		canonical, err := normalizeOptionalClock(*in.ArrivalTime, "arrival time")
		if err != nil {
			return err
		}
		patch.ArrivalTime = &canonical
		changed["arrival_time"] = canonical
	}
	if in.LeaveTime != nil {
		canonical, err := normalizeOptionalClock(*in.LeaveTime, "leave time")
		if err != nil {
			return err
		}
		patch.LeaveTime = &canonical
		changed["leave_time"] = canonical
	}
	if in.Services != nil {
		joined := model.JoinServices(*in.Services)
		patch.Services = &joined
		changed["services"] = joined
	}
	if in.InvoiceSent != nil {
		if *in.InvoiceSent != model.InvoiceYes && *in.InvoiceSent != model.InvoiceNo {
			return fmt.Errorf("%w: invoice flag must be yes or no", ErrValidation)
		}
		patch.InvoiceSent = in.InvoiceSent
		changed["invoice_sent"] = *in.InvoiceSent
	}

	if patch.Empty() {
		return nil
	}

	if err := s.appts.Update(ctx, id, patch); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeKindUpdated, id, changed)
	return nil
}

// RegisterArrival отмечает приход пациента: фактический интервал и
// оказанные услуги. Статус становится arrived внутри того же UPDATE.
func (s *AppointmentService) RegisterArrival(ctx context.Context, id, arrivalTime, leaveTime string, services []string) error {
	arrival, err := timeline.ParseClock(arrivalTime)
	if err != nil {
		return fmt.Errorf("%w: arrival time: %v", ErrValidation, err)
	}
	leave, err := timeline.ParseClock(leaveTime)
	if err != nil {
		return fmt.Errorf("%w: leave time: %v", ErrValidation, err)
	}

	// В хранилище уходит каноничная форма HH:MM, иначе ломается
	// лексикографическая сортировка.
	arrivalCanonical := arrival.String()
	leaveCanonical := leave.String()
	joined := model.JoinServices(services)
	patch := repository.Patch{
		ArrivalTime: &arrivalCanonical,
		LeaveTime:   &leaveCanonical,
		Services:    &joined,
	}
	if err := s.appts.Update(ctx, id, patch); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeKindArrival, id, map[string]any{
		"arrival_time": arrivalCanonical,
		"leave_time":   leaveCanonical,
		"services":     joined,
	})
	return nil
}

// ClearArrival снимает отметку прихода; статус возвращается в scheduled.
func (s *AppointmentService) ClearArrival(ctx context.Context, id string) error {
	empty := ""
	patch := repository.Patch{
		ArrivalTime: &empty,
		LeaveTime:   &empty,
		Services:    &empty,
	}
	if err := s.appts.Update(ctx, id, patch); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeKindArrival, id, map[string]any{"cleared": true})
	return nil
}

// SetInvoiceSent переключает флаг отправки счёта.
func (s *AppointmentService) SetInvoiceSent(ctx context.Context, id string, sent bool) error {
	flag := model.InvoiceNo
	if sent {
		flag = model.InvoiceYes
	}
	if err := s.appts.Update(ctx, id, repository.Patch{InvoiceSent: &flag}); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeKindUpdated, id, map[string]any{"invoice_sent": flag})
	return nil
}

// Get возвращает запись по id.
func (s *AppointmentService) Get(ctx context.Context, id string) (*model.Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// List выполняет выборку по фильтру и накладывает поиск по имени.
func (s *AppointmentService) List(ctx context.Context, q Query) ([]model.Appointment, error) {
	appts, err := s.appts.List(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	if q.NameContains == "" {
		return appts, nil
	}

	filtered := appts[:0]
	for _, a := range appts {
		if strings.Contains(a.Patient, q.NameContains) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ImportCSV загружает записи из CSV-файла и фиксирует импорт в
// журнале изменений одной записью на прогон.
func (s *AppointmentService) ImportCSV(ctx context.Context, path string) (int, error) {
	n, err := transfer.ImportCSV(ctx, s.appts, path)
	if err != nil {
		return n, err
	}
	s.logChange(ctx, model.ChangeKindImported, "", map[string]any{
		"path": path,
		"rows": n,
	})
	return n, nil
}

// Delete удаляет запись; удаление безусловное и немедленное.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.appts.Delete(ctx, id); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeKindDeleted, id, nil)
	return nil
}

// NormalizeDate канонизирует пользовательскую дату в YYYY-MM-DD.
// Принимаются оба исторических формата ввода.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayoutISO, s); err == nil {
		return t.Format(dateLayoutISO), nil
	}
	if t, err := time.Parse(dateLayoutDMY, s); err == nil {
		return t.Format(dateLayoutISO), nil
	}
	return "", fmt.Errorf("%w: date must be YYYY-MM-DD or DD-MM-YYYY, got %q", ErrValidation, s)
}

// normalizeOptionalClock канонизирует необязательное время: пустая
// строка остаётся очисткой, непустая приводится к форме HH:MM.
func normalizeOptionalClock(v, field string) (string, error) {
	if v == "" {
		return "", nil
	}
	c, err := timeline.ParseClock(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
	}
	return c.String(), nil
}

func (s *AppointmentService) logChange(ctx context.Context, kind model.ChangeKind, apptID string, details map[string]any) {
	var payload datatypes.JSON
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			logging.Log.Error("change log marshal failed", zap.Error(err))
			return
		}
		payload = raw
	}

	entry := &model.ChangeLog{
		Kind:          kind,
		AppointmentID: apptID,
		Details:       payload,
	}
	if err := s.log.Append(ctx, entry); err != nil {
		logging.Log.Error("change log append failed",
			zap.String("kind", string(kind)),
			zap.String("appointment_id", apptID),
			zap.Error(err))
	}
}
