package session

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// header is the fixed column order of the store file.
var header = []string{"Date", "Horse", "Amount", "Paid", "Email", "Notes"}

// Store appends records to a CSV file, creating it with a header row
// on first use. The mutex keeps two submits from interleaving rows;
// there is no other coordination and no retry.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the store's file location.
func (s *Store) Path() string { return s.path }

// Append writes one record at the end of the file.
func (s *Store) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat record store: %w", err)
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		w.Write(header)
	}
	w.Write(encodeRecord(r))
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close record store: %w", err)
	}
	return nil
}

// List reads every stored record back, oldest first. A missing file is
// an empty store, not an error.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open record store: %w", err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = len(header)
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read record store: %w", err)
	}
	var out []Record
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("record store row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeRecord(r Record) []string {
	return []string{
		r.DateString(),
		r.Horse,
		strconv.FormatFloat(r.Amount, 'f', 2, 64),
		strconv.FormatBool(r.Paid),
		r.Email,
		r.Notes,
	}
}

func decodeRecord(row []string) (Record, error) {
	date, err := time.Parse("2006-01-02", row[0])
	if err != nil {
		return Record{}, err
	}
	amount, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return Record{}, err
	}
	paid, err := strconv.ParseBool(row[3])
	if err != nil {
		return Record{}, err
	}
	return Record{
		Date:   date,
		Horse:  row[1],
		Amount: amount,
		Paid:   paid,
		Email:  row[4],
		Notes:  row[5],
	}, nil
}
