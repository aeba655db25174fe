package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carebook/carebook/internal/domain/triage"
)

// Identifier prefixes.
const (
	PatientIDPrefix     = "P"
	AppointmentIDPrefix = "APT"
)

// Appointment statuses. Booking always yields StatusConfirmed; a stored
// appointment may carry StatusCancelled.
const (
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
)

const dateLayout = "2006-01-02"

// Patient is a registered clinic patient.
type Patient struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Contact   string `json:"contact"`
	History   string `json:"history"`
	DateAdded string `json:"date_added"`
}

// Appointment is a booked visit. PatientID is not checked against the
// patient table.
type Appointment struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	Doctor        string `json:"doctor"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
}

// HealthMetric is one BMI measurement.
type HealthMetric struct {
	PatientID string  `json:"patient_id"`
	Weight    float64 `json:"weight"`
	Height    float64 `json:"height"`
	BMI       float64 `json:"bmi"`
	Category  string  `json:"category"`
	Date      string  `json:"date"`
}

// SymptomRecord is a symptom report with its detected condition.
type SymptomRecord struct {
	PatientID string `json:"patient_id"`
	Symptoms  string `json:"symptoms"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
	Date      string `json:"date"`
}

// -- Request bodies --
//
// Pointer fields distinguish an absent field from an empty one.

type PatientInput struct {
	Name    *string         `json:"name"`
	Age     json.RawMessage `json:"age"`
	Contact *string         `json:"contact"`
	History string          `json:"history"`
}

type AppointmentInput struct {
	PatientID *string `json:"patient_id"`
	Doctor    *string `json:"doctor"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
}

type HealthMetricInput struct {
	PatientID *string  `json:"patient_id"`
	Weight    *float64 `json:"weight"`
	Height    *float64 `json:"height"`
}

type SymptomInput struct {
	PatientID *string `json:"patient_id"`
	Symptoms  *string `json:"symptoms"`
}

// -- Constructors --

// NewPatient validates in and assigns the next patient identifier. No
// identifier is consumed when validation fails.
func NewPatient(in PatientInput, ids *Sequence, now time.Time) (*Patient, error) {
	if in.Name == nil {
		return nil, missingField("name")
	}
	if len(in.Age) == 0 || string(in.Age) == "null" {
		return nil, missingField("age")
	}
	if in.Contact == nil {
		return nil, missingField("contact")
	}

	if err := validateName(*in.Name); err != nil {
		return nil, err
	}
	if err := validateContact(*in.Contact); err != nil {
		return nil, err
	}
	age, err := parseAge(in.Age)
	if err != nil {
		return nil, err
	}
	if err := validateAge(age); err != nil {
		return nil, err
	}

	return &Patient{
		PatientID: ids.Next(),
		Name:      *in.Name,
		Age:       age,
		Contact:   *in.Contact,
		History:   in.History,
		DateAdded: now.Format(dateLayout),
	}, nil
}

// NewAppointment books a confirmed appointment.
func NewAppointment(in AppointmentInput, ids *Sequence) (*Appointment, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"patient_id", in.PatientID},
		{"doctor", in.Doctor},
		{"date", in.Date},
		{"time", in.Time},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, missingField(f.name)
		}
	}

	return &Appointment{
		AppointmentID: ids.Next(),
		PatientID:     *in.PatientID,
		Doctor:        *in.Doctor,
		Date:          *in.Date,
		Time:          *in.Time,
		Status:        StatusConfirmed,
	}, nil
}

// NewHealthMetric computes the BMI and its category.
func NewHealthMetric(in HealthMetricInput, now time.Time) (*HealthMetric, error) {
	if in.PatientID == nil {
		return nil, missingField("patient_id")
	}
	if in.Weight == nil {
		return nil, missingField("weight")
	}
	if in.Height == nil {
		return nil, missingField("height")
	}
	if err := validateMeasurements(*in.Weight, *in.Height); err != nil {
		return nil, err
	}

	bmi := triage.ComputeBMI(*in.Weight, *in.Height)
	return &HealthMetric{
		PatientID: *in.PatientID,
		Weight:    *in.Weight,
		Height:    *in.Height,
		BMI:       bmi,
		Category:  triage.Categorize(bmi),
		Date:      now.Format(dateLayout),
	}, nil
}

// NewSymptomRecord stores the symptoms lowercased along with the detected
// condition.
func NewSymptomRecord(in SymptomInput, now time.Time) (*SymptomRecord, error) {
	if in.PatientID == nil {
		return nil, missingField("patient_id")
	}
	if in.Symptoms == nil {
		return nil, missingField("symptoms")
	}

	symptoms := strings.ToLower(*in.Symptoms)
	cond := triage.DetectCondition(symptoms)
	return &SymptomRecord{
		PatientID: *in.PatientID,
		Symptoms:  symptoms,
		Condition: cond.Name,
		Action:    cond.Action,
		Date:      now.Format(dateLayout),
	}, nil
}

// -- Identifiers --

// Sequence hands out prefix-plus-counter identifiers, zero-padded to three
// digits (P001 … P999, P1000). It is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	last   int
}

// NewSequence returns a Sequence whose next identifier is last+1.
func NewSequence(prefix string, last int) *Sequence {
	return &Sequence{prefix: prefix, last: last}
}

// Next returns the next identifier.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return fmt.Sprintf("%s%03d", s.prefix, s.last)
}

// Observe advances the counter past id when id carries this sequence's
// prefix and a larger number. Foreign or malformed identifiers are ignored.
func (s *Sequence) Observe(id string) {
	if !strings.HasPrefix(id, s.prefix) {
		return
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, s.prefix))
	if err != nil || n < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.last {
		s.last = n
	}
}

// Last returns the most recently issued (or observed) counter value.
func (s *Sequence) Last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
