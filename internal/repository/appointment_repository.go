package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/logging"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
)

// ErrNotFound — запись с таким id отсутствует в хранилище.
var ErrNotFound = errors.New("appointment not found")

// Filter описывает необязательные условия выборки.
// Пустая строка = без ограничения по этому измерению; все заданные
// условия объединяются по AND. Границы дат включительные.
type Filter struct {
	DateFrom    string
	DateTo      string
	Status      model.Status
	InvoiceSent model.InvoiceFlag
}

// Patch — частичное обновление: nil-поле не трогается, ненулевой
// указатель (в том числе на пустую строку) записывается. Это снимает
// двусмысленность «не менять» против «очистить».
type Patch struct {
	Patient     *string
	Date        *string
	PlannedTime *string
	ArrivalTime *string
	LeaveTime   *string
	Services    *string
	InvoiceSent *model.InvoiceFlag
}

// Empty сообщает, задано ли хоть одно поле.
func (p Patch) Empty() bool {
	return p.Patient == nil && p.Date == nil && p.PlannedTime == nil &&
		p.ArrivalTime == nil && p.LeaveTime == nil && p.Services == nil &&
		p.InvoiceSent == nil
}

type AppointmentRepository interface {
	// Создать запись.
	Create(ctx context.Context, appt *model.Appointment) error
	// Найти запись по ID.
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	// Выборка по фильтру, отсортированная по дате и плановому времени.
	List(ctx context.Context, f Filter) ([]model.Appointment, error)
	// Частичное обновление одним UPDATE-стейтментом.
	Update(ctx context.Context, id string, patch Patch) error
	// Удалить запись по ID.
	Delete(ctx context.Context, id string) error
	// Вставка-или-замена по ID (для импорта).
	Upsert(ctx context.Context, appt *model.Appointment) error
	// Общее количество записей.
	Count(ctx context.Context) (int64, error)
}

// Реализация на GORM.
type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		logging.Log.Error("appointment create failed", zap.String("id", appt.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Error("appointment fetch failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &appt, nil
}

func (r *GormAppointmentRepository) List(ctx context.Context, f Filter) ([]model.Appointment, error) {
	q := r.db.WithContext(ctx).Model(&model.Appointment{})

	if f.DateFrom != "" {
		q = q.Where("date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("date <= ?", f.DateTo)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.InvoiceSent != "" {
		q = q.Where("invoice_sent = ?", f.InvoiceSent)
	}

	var appts []model.Appointment
	if err := q.Order("date ASC, planned_time ASC").Find(&appts).Error; err != nil {
		logging.Log.Error("appointment list failed", zap.Error(err))
		return nil, err
	}
	return appts, nil
}

func (r *GormAppointmentRepository) Update(ctx context.Context, id string, patch Patch) error {
	if patch.Empty() {
		return nil
	}

	update := map[string]any{}
	if patch.Patient != nil {
		update["patient"] = *patch.Patient
	}
	if patch.Date != nil {
		update["date"] = *patch.Date
	}
	if patch.PlannedTime != nil {
		update["planned_time"] = *patch.PlannedTime
	}
	if patch.ArrivalTime != nil {
		// Статус выводится из времени прихода в том же стейтменте,
		// так что они не могут разойтись.
		update["arrival_time"] = *patch.ArrivalTime
		update["status"] = model.DeriveStatus(*patch.ArrivalTime)
	}
	if patch.LeaveTime != nil {
		update["leave_time"] = *patch.LeaveTime
	}
	if patch.Services != nil {
		update["services"] = *patch.Services
	}
	if patch.InvoiceSent != nil {
		update["invoice_sent"] = *patch.InvoiceSent
	}

	res := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", id).
		Updates(update)
	if res.Error != nil {
		logging.Log.Error("appointment update failed", zap.String("id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAppointmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Appointment{}, "id = ?", id)
	if res.Error != nil {
		logging.Log.Error("appointment delete failed", zap.String("id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAppointmentRepository) Upsert(ctx context.Context, appt *model.Appointment) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(appt).Error
	if err != nil {
		logging.Log.Error("appointment upsert failed", zap.String("id", appt.ID), zap.Error(err))
	}
	return err
}

func (r *GormAppointmentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Appointment{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
