package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"equipment-reservation-backend/config"
	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/model"
	"equipment-reservation-backend/internal/store"
)

// Target is the subset of the store the importer writes to.
type Target interface {
	Count(ctx context.Context) (int64, error)
	WriteAll(ctx context.Context, reservations []booking.Reservation) error
}

// columns maps accepted header names to the row field they fill.
// The published sheet uses the Korean headers; exports from this service use the English ones.
var columns = map[string]func(*model.ReservationRow, string){
	"ID":         func(r *model.ReservationRow, v string) { r.ID = v },
	"신청자":        func(r *model.ReservationRow, v string) { r.Applicant = v },
	"applicant":  func(r *model.ReservationRow, v string) { r.Applicant = v },
	"설비명 & 작업내용": func(r *model.ReservationRow, v string) { r.EquipmentTask = v },
	"equipment":  func(r *model.ReservationRow, v string) { r.EquipmentTask = v },
	"날짜":         func(r *model.ReservationRow, v string) { r.Date = v },
	"date":       func(r *model.ReservationRow, v string) { r.Date = v },
	"시간":         func(r *model.ReservationRow, v string) { r.Time = v },
	"time":       func(r *model.ReservationRow, v string) { r.Time = v },
	"소요시간":       func(r *model.ReservationRow, v string) { r.Duration = v },
	"duration":   func(r *model.ReservationRow, v string) { r.Duration = v },
	"비밀번호":       func(r *model.ReservationRow, v string) { r.Password = v },
	"password":   func(r *model.ReservationRow, v string) { r.Password = v },
	"상태":         func(r *model.ReservationRow, v string) { r.Status = v },
	"status":     func(r *model.ReservationRow, v string) { r.Status = v },
}

// Importer seeds an empty store from a published spreadsheet CSV export.
type Importer struct {
	cfg    config.SheetConfig
	target Target
	client *http.Client
}

// NewImporter creates an importer with an HTTP client honouring the configured proxy and timeout.
func NewImporter(cfg config.SheetConfig, target Target) *Importer {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Importer will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Importer{
		cfg:    cfg,
		target: target,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Run performs the one-shot import when enabled. Failures are logged; the board starts regardless.
func (im *Importer) Run(ctx context.Context) {
	if !im.cfg.Enabled {
		log.Println("Sheet import is disabled.")
		return
	}
	n, err := im.ImportOnce(ctx)
	if err != nil {
		log.Printf("Error importing reservations from sheet: %v", err)
		return
	}
	log.Printf("Sheet import finished: %d reservations imported.", n)
}

// ImportOnce copies the sheet into the store if, and only if, the store is empty.
// It returns the number of reservations written.
func (im *Importer) ImportOnce(ctx context.Context) (int, error) {
	n, err := im.target.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count existing reservations: %w", err)
	}
	if n > 0 {
		log.Printf("Store already holds %d rows, skipping sheet import.", n)
		return 0, nil
	}

	body, err := im.fetch(ctx)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	reservations, err := Parse(body)
	if err != nil {
		return 0, err
	}
	if len(reservations) == 0 {
		return 0, nil
	}

	if err := im.target.WriteAll(ctx, reservations); err != nil {
		return 0, fmt.Errorf("failed to write imported reservations: %w", err)
	}
	return len(reservations), nil
}

func (im *Importer) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, im.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Parse reads a CSV export whose first line is the header row. Columns are
// matched by name; blank and malformed rows, and repeats of an ID already
// seen, are skipped with a warning.
func Parse(r io.Reader) ([]booking.Reservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []booking.Reservation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet header: %w", err)
	}

	setters := make([]func(*model.ReservationRow, string), len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		setters[i] = columns[name]
	}

	reservations := []booking.Reservation{}
	seen := make(map[string]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet line %d: %w", line, err)
		}

		var row model.ReservationRow
		for i, value := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, value)
			}
		}
		if strings.TrimSpace(row.ID) == "" && strings.TrimSpace(row.Applicant) == "" {
			continue
		}

		res, err := store.RowToReservation(row)
		if err != nil {
			log.Printf("Warning: skipping sheet line %d (id %q): %v", line, row.ID, err)
			continue
		}
		if first, dup := seen[res.ID]; dup {
			log.Printf("Warning: skipping sheet line %d: id %s already used on line %d", line, res.ID, first)
			continue
		}
		seen[res.ID] = line
		reservations = append(reservations, res)
	}
	return reservations, nil
}
