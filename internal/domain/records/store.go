package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Store keeps the four tables in memory and writes the full snapshot
// through its Persister on every mutation. A mutation becomes visible only
// after the write succeeded.
type Store struct {
	mu        sync.Mutex
	data      *Snapshot
	persister Persister
	logger    zerolog.Logger
}

// NewStore loads the persisted snapshot. A missing or unreadable file is
// not an error: the store starts empty and the problem is logged.
func NewStore(p Persister, logger zerolog.Logger) *Store {
	data, err := p.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("starting with empty record store")
		data = EmptySnapshot()
	}
	data.normalize()
	return &Store{data: data, persister: p, logger: logger}
}

// Snapshot returns a copy of the current tables.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

// mutate applies fn to a copy of the tables, persists the copy, and swaps
// it in. The lock is held for the whole cycle.
func (s *Store) mutate(ctx context.Context, fn func(next *Snapshot)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	fn(next)
	if err := s.persister.SaveAll(next); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist records")
		return fmt.Errorf("save records: %w", err)
	}
	s.data = next
	return nil
}

func (s *Store) read(fn func(cur *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// -- Patients --

func (s *Store) AddPatient(ctx context.Context, p Patient) error {
	return s.mutate(ctx, func(next *Snapshot) {
		next.Patients = append(next.Patients, p)
	})
}

func (s *Store) ListPatients(_ context.Context) ([]Patient, error) {
	var out []Patient
	s.read(func(cur *Snapshot) {
		out = append([]Patient{}, cur.Patients...)
	})
	return out, nil
}

// DeletePatient removes the patient together with its BMI and symptom
// records in one write, so a failed save leaves all three tables intact.
func (s *Store) DeletePatient(ctx context.Context, patientID string) error {
	return s.mutate(ctx, func(next *Snapshot) {
		patients := next.Patients[:0]
		for _, p := range next.Patients {
			if p.PatientID != patientID {
				patients = append(patients, p)
			}
		}
		next.Patients = patients

		metrics := next.BMI[:0]
		for _, m := range next.BMI {
			if m.PatientID != patientID {
				metrics = append(metrics, m)
			}
		}
		next.BMI = metrics

		symptoms := next.Symptoms[:0]
		for _, rec := range next.Symptoms {
			if rec.PatientID != patientID {
				symptoms = append(symptoms, rec)
			}
		}
		next.Symptoms = symptoms
	})
}

// -- Appointments --

func (s *Store) AddAppointment(ctx context.Context, a Appointment) error {
	return s.mutate(ctx, func(next *Snapshot) {
		next.Appointments = append(next.Appointments, a)
	})
}

func (s *Store) ListAppointments(_ context.Context) ([]Appointment, error) {
	var out []Appointment
	s.read(func(cur *Snapshot) {
		out = append([]Appointment{}, cur.Appointments...)
	})
	return out, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, appointmentID string) error {
	return s.mutate(ctx, func(next *Snapshot) {
		kept := next.Appointments[:0]
		for _, a := range next.Appointments {
			if a.AppointmentID != appointmentID {
				kept = append(kept, a)
			}
		}
		next.Appointments = kept
	})
}

// -- BMI --

func (s *Store) AddHealthMetric(ctx context.Context, m HealthMetric) error {
	return s.mutate(ctx, func(next *Snapshot) {
		next.BMI = append(next.BMI, m)
	})
}

func (s *Store) ListHealthMetrics(_ context.Context) ([]HealthMetric, error) {
	var out []HealthMetric
	s.read(func(cur *Snapshot) {
		out = append([]HealthMetric{}, cur.BMI...)
	})
	return out, nil
}

func (s *Store) DeleteHealthMetrics(ctx context.Context, patientID string) error {
	return s.mutate(ctx, func(next *Snapshot) {
		kept := next.BMI[:0]
		for _, m := range next.BMI {
			if m.PatientID != patientID {
				kept = append(kept, m)
			}
		}
		next.BMI = kept
	})
}

// -- Symptoms --

func (s *Store) AddSymptom(ctx context.Context, rec SymptomRecord) error {
	return s.mutate(ctx, func(next *Snapshot) {
		next.Symptoms = append(next.Symptoms, rec)
	})
}

func (s *Store) ListSymptoms(_ context.Context) ([]SymptomRecord, error) {
	var out []SymptomRecord
	s.read(func(cur *Snapshot) {
		out = append([]SymptomRecord{}, cur.Symptoms...)
	})
	return out, nil
}
