package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/backup"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/config"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/db"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/listing"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/logging"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/repository"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/service"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/timeline"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/transfer"
)

func main() {
	// 1. Загружаем .env (если есть) и конфиг из окружения.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Настраиваем логгер.
	if err := logging.Init(cfg.LogDev); err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer logging.Sync()

	// 3. Первое действие — резервная копия хранилища.
	if path, err := backup.Run(cfg); err != nil {
		log.Fatalf("backup: %v", err)
	} else if path != "" {
		logging.SLog.Infow("backup written", "path", path)
	}

	// 4. Подключаемся к хранилищу и мигрируем схему.
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 5. Репозитории и сервис.
	apptRepo := repository.NewGormAppointmentRepository(gormDB)
	logRepo := repository.NewGormChangeLogRepository(gormDB)
	svc := service.NewAppointmentService(apptRepo, logRepo)

	// 6. Интерактивный цикл.
	app := &cli{
		svc:      svc,
		repo:     apptRepo,
		pageSize: cfg.PageSize,
		in:       bufio.NewScanner(os.Stdin),
	}
	app.run()
}

type cli struct {
	svc      *service.AppointmentService
	repo     repository.AppointmentRepository
	pageSize int
	in       *bufio.Scanner
}

func (c *cli) run() {
	ctx := context.Background()
	for {
		fmt.Println()
		fmt.Println("1 new  2 list  3 arrival  4 edit  5 delete")
		fmt.Println("6 day timeline  7 week timeline  8 export  9 import  0 quit")

		switch c.prompt("> ") {
		case "1":
			c.create(ctx)
		case "2":
			c.list(ctx)
		case "3":
			c.arrival(ctx)
		case "4":
			c.edit(ctx)
		case "5":
			c.delete(ctx)
		case "6":
			c.timeline(ctx, timeline.DayOf(time.Now()))
		case "7":
			c.timeline(ctx, timeline.WeekOf(time.Now()))
		case "8":
			c.export(ctx)
		case "9":
			c.importCSV(ctx)
		case "0":
			return
		}
	}
}

func (c *cli) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *cli) create(ctx context.Context) {
	patient := c.prompt("patient name: ")
	date := c.prompt("date (DD-MM-YYYY or YYYY-MM-DD): ")
	planned := c.prompt("planned time (HH:MM): ")

	appt, err := c.svc.Create(ctx, patient, date, planned)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("created %s: %s %s %s\n", appt.ID, appt.Date, appt.PlannedTime, appt.Patient)
}

func (c *cli) list(ctx context.Context) {
	q := c.buildQuery()
	appts, err := c.svc.List(ctx, q)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(appts) == 0 {
		fmt.Println("no appointments")
		return
	}

	page := 1
	for {
		p := listing.Paginate(appts, page, c.pageSize)
		for _, a := range p.Items {
			printAppointment(a)
		}
		fmt.Printf("-- page %d/%d, %d total --\n", p.Page, p.PageCount(), p.Total)
		if !p.HasNext {
			return
		}
		if c.prompt("n = next page, anything else = back: ") != "n" {
			return
		}
		page++
	}
}

func (c *cli) buildQuery() service.Query {
	var q service.Query
	switch c.prompt("range (1 today, 2 month, 3 all): ") {
	case "1":
		q = service.TodayQuery(time.Now())
	case "2":
		q = service.MonthQuery(time.Now())
	}

	switch c.prompt("status (1 all, 2 scheduled, 3 arrived): ") {
	case "2":
		q.Filter.Status = model.StatusScheduled
	case "3":
		q.Filter.Status = model.StatusArrived
	}

	switch c.prompt("invoice (1 all, 2 sent, 3 not sent): ") {
	case "2":
		q.Filter.InvoiceSent = model.InvoiceYes
	case "3":
		q.Filter.InvoiceSent = model.InvoiceNo
	}

	q.NameContains = c.prompt("name contains (empty = all): ")
	return q
}

func (c *cli) arrival(ctx context.Context) {
	id := c.prompt("appointment id: ")
	if c.prompt("arrived? (y/n): ") != "y" {
		if err := c.svc.ClearArrival(ctx, id); err != nil {
			fmt.Println("error:", err)
		}
		return
	}

	arrivalTime := c.prompt("arrival time (HH:MM): ")
	leaveTime := c.prompt("leave time (HH:MM): ")
	services := model.ParseServices(model.NormalizeServicesText(c.prompt("services (; separated): ")))

	if err := c.svc.RegisterArrival(ctx, id, arrivalTime, leaveTime, services); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("arrival registered")
}

func (c *cli) edit(ctx context.Context) {
	id := c.prompt("appointment id: ")
	appt, err := c.svc.Get(ctx, id)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printAppointment(*appt)
	fmt.Println("empty answer keeps the current value, '-' clears it")

	var in service.UpdateInput
	if v := c.prompt(fmt.Sprintf("patient [%s]: ", appt.Patient)); v != "" {
		in.Patient = &v
	}
	if v := c.prompt(fmt.Sprintf("date [%s]: ", appt.Date)); v != "" {
		in.Date = &v
	}
	if v := c.prompt(fmt.Sprintf("planned time [%s]: ", appt.PlannedTime)); v != "" {
		in.PlannedTime = &v
	}
	if v := c.prompt(fmt.Sprintf("arrival time [%s]: ", appt.ArrivalTime)); v != "" {
		in.ArrivalTime = clearable(v)
	}
	if v := c.prompt(fmt.Sprintf("leave time [%s]: ", appt.LeaveTime)); v != "" {
		in.LeaveTime = clearable(v)
	}
	if v := c.prompt(fmt.Sprintf("services [%s]: ", appt.Services)); v != "" {
		services := model.ParseServices(model.NormalizeServicesText(*clearable(v)))
		in.Services = &services
	}
	if v := c.prompt(fmt.Sprintf("invoice sent [%s] (yes/no): ", appt.InvoiceSent)); v != "" {
		flag := model.InvoiceFlag(v)
		in.InvoiceSent = &flag
	}

	if err := c.svc.Update(ctx, id, in); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("updated")
}

// clearable трактует '-' как явную очистку поля.
func clearable(v string) *string {
	if v == "-" {
		v = ""
	}
	return &v
}

func (c *cli) delete(ctx context.Context) {
	id := c.prompt("appointment id: ")
	if c.prompt("delete? (y/n): ") != "y" {
		return
	}
	if err := c.svc.Delete(ctx, id); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("deleted")
}

func (c *cli) timeline(ctx context.Context, w timeline.Window) {
	from, to := w.Bounds()
	appts, err := c.svc.List(ctx, service.Query{
		Filter: repository.Filter{DateFrom: from, DateTo: to},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	blocks, err := timeline.Layout(appts, w)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(timeline.Render(blocks, w, time.Now()))
}

func (c *cli) export(ctx context.Context) {
	path := c.prompt("export to file: ")
	if path == "" {
		return
	}
	n, err := transfer.ExportCSV(ctx, c.repo, path)
	if err != nil {
		if errors.Is(err, transfer.ErrExportEmpty) {
			fmt.Println("nothing to export")
		} else {
			fmt.Println("error:", err)
		}
		return
	}
	fmt.Printf("exported %d appointments to %s\n", n, path)
}

func (c *cli) importCSV(ctx context.Context) {
	path := c.prompt("import from file: ")
	if path == "" {
		return
	}
	n, err := c.svc.ImportCSV(ctx, path)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("imported %d appointments from %s\n", n, path)
}

func printAppointment(a model.Appointment) {
	arrived := " "
	if a.Status == model.StatusArrived {
		arrived = "x"
	}
	interval := ""
	if a.ArrivalTime != "" {
		interval = fmt.Sprintf(" %s–%s", a.ArrivalTime, a.LeaveTime)
	}
	fmt.Printf("%s  %s %s  [%s]%s  %s  invoice:%s  (%s)\n",
		a.ID, a.Date, a.PlannedTime, arrived, interval, a.Patient, a.InvoiceSent,
		strings.Join(model.ParseServices(a.Services), ", "))
}
