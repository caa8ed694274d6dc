package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/repository"
)

// ErrExportEmpty — экспорт при пустом хранилище; файл не создаётся.
var ErrExportEmpty = errors.New("no appointments to export")

// utf8BOM пишется в начало файла, чтобы Excel распознал кодировку.
const utf8BOM = "\ufeff"

// columns — заголовок CSV в порядке колонок хранилища.
var columns = []string{
	"id", "date", "planned_time", "patient", "status",
	"arrival_time", "leave_time", "services", "invoice_sent",
}

// ExportCSV выгружает все записи в CSV-файл: заголовок плюс строки,
// отсортированные по дате и плановому времени. Возвращает число строк.
func ExportCSV(ctx context.Context, repo repository.AppointmentRepository, path string) (int, error) {
	appts, err := repo.List(ctx, repository.Filter{})
	if err != nil {
		return 0, err
	}
	if len(appts) == 0 {
		return 0, ErrExportEmpty
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return 0, fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, a := range appts {
		row := []string{
			a.ID, a.Date, a.PlannedTime, a.Patient, string(a.Status),
			a.ArrivalTime, a.LeaveTime, a.Services, string(a.InvoiceSent),
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}

	return len(appts), nil
}

// ImportCSV загружает записи из CSV-файла. Заголовок обязан совпадать
// с колонками хранилища; каждая строка upsert-ится по id, последняя
// запись с тем же id побеждает. Возвращает число загруженных строк.
func ImportCSV(ctx context.Context, repo repository.AppointmentRepository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if err := checkHeader(header); err != nil {
		return 0, err
	}

	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	count := 0
	for _, rec := range records {
		appt := &model.Appointment{
			ID:          rec[0],
			Date:        rec[1],
			PlannedTime: rec[2],
			Patient:     rec[3],
			Status:      model.Status(rec[4]),
			ArrivalTime: rec[5],
			LeaveTime:   rec[6],
			Services:    rec[7],
			InvoiceSent: model.InvoiceFlag(rec[8]),
		}
		if err := repo.Upsert(ctx, appt); err != nil {
			return count, fmt.Errorf("upsert %s: %w", appt.ID, err)
		}
		count++
	}

	return count, nil
}

func checkHeader(header []string) error {
	if len(header) != len(columns) {
		return fmt.Errorf("unexpected header: got %d columns, want %d", len(header), len(columns))
	}
	for i, name := range columns {
		if header[i] != name {
			return fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], name)
		}
	}
	return nil
}
