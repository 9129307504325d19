package delay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Store holds the immutable rentals dataset, loaded once at startup from the
// CSV export the ops team ships alongside the service.
type Store struct {
	rentals []Rental
	byID    map[int64]*Rental
}

const (
	colRentalID      = "rental_id"
	colCarID         = "car_id"
	colCheckinType   = "checkin_type"
	colState         = "state"
	colCheckoutDelay = "delay_at_checkout_in_minutes"
	colPreviousID    = "previous_ended_rental_id"
	colMinutesSince  = "time_delta_with_previous_rental_in_minutes"
)

// LoadCSV reads the rentals export. Column order is not fixed (the export
// tool reorders columns between versions), so headers are resolved by name;
// unnamed index columns are ignored.
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening delay dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading delay dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.ToLower(name))
		if strings.HasPrefix(name, "unnamed") {
			continue
		}
		cols[name] = i
	}
	for _, required := range []string{colRentalID, colCheckinType, colState, colCheckoutDelay, colPreviousID, colMinutesSince} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("delay dataset is missing column %q", required)
		}
	}

	store := &Store{byID: make(map[int64]*Rental)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading delay dataset line %d: %w", line, err)
		}
		rental, err := parseRental(record, cols)
		if err != nil {
			return nil, fmt.Errorf("delay dataset line %d: %w", line, err)
		}
		store.rentals = append(store.rentals, rental)
	}
	for i := range store.rentals {
		store.byID[store.rentals[i].ID] = &store.rentals[i]
	}

	log.Info().Str("path", path).Int("rentals", len(store.rentals)).Msg("Delay dataset loaded")
	return store, nil
}

func parseRental(record []string, cols map[string]int) (Rental, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(record[cols[colRentalID]]), 10, 64)
	if err != nil {
		return Rental{}, fmt.Errorf("invalid rental_id %q", record[cols[colRentalID]])
	}
	rental := Rental{
		ID:          id,
		CheckinType: strings.ToLower(strings.TrimSpace(record[cols[colCheckinType]])),
		State:       strings.ToLower(strings.TrimSpace(record[cols[colState]])),
	}
	if idx, ok := cols[colCarID]; ok {
		if carID, err := strconv.ParseInt(strings.TrimSpace(record[idx]), 10, 64); err == nil {
			rental.CarID = carID
		}
	}
	if v, ok := parseOptionalFloat(record[cols[colCheckoutDelay]]); ok {
		rental.CheckoutDelayMin = &v
	}
	if v, ok := parseOptionalFloat(record[cols[colMinutesSince]]); ok {
		rental.MinutesSincePrevious = &v
	}
	if raw := strings.TrimSpace(record[cols[colPreviousID]]); raw != "" {
		// pandas round-trips int columns with NaNs as floats ("123.0")
		prev, ok := parseOptionalFloat(raw)
		if !ok {
			return Rental{}, fmt.Errorf("invalid previous_ended_rental_id %q", raw)
		}
		prevID := int64(prev)
		rental.PreviousRentalID = &prevID
	}
	return rental, nil
}

func parseOptionalFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Rentals returns the full dataset in file order.
func (s *Store) Rentals() []Rental {
	return s.rentals
}

// PreviousDelay resolves the checkout delay of the rental that preceded r on
// the same car, when both the link and the delay are known.
func (s *Store) PreviousDelay(r *Rental) (float64, bool) {
	if r.PreviousRentalID == nil {
		return 0, false
	}
	prev, ok := s.byID[*r.PreviousRentalID]
	if !ok || prev.CheckoutDelayMin == nil {
		return 0, false
	}
	return *prev.CheckoutDelayMin, true
}

func (s *Store) Len() int {
	return len(s.rentals)
}
