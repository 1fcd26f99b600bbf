// Package seed generates reproducible sample data for development and demo
// environments: a set of doctors across common specializations, patient
// accounts, and a spread of appointments in various lifecycle states.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/identity"
	"github.com/clinicbook/clinicbook/pkg/booking"
)

// Config controls the volume of generated data. The same Seed always
// produces the same dataset.
type Config struct {
	DoctorCount        int
	PatientCount       int
	AppointmentsPerDoc int
	Password           string
	Seed               int64
}

// DefaultConfig returns a small dataset suitable for local development.
func DefaultConfig() Config {
	return Config{
		DoctorCount:        8,
		PatientCount:       20,
		AppointmentsPerDoc: 5,
		Password:           "changeme123",
		Seed:               1,
	}
}

// Result summarizes a seed run.
type Result struct {
	Doctors      int           `json:"doctors"`
	Patients     int           `json:"patients"`
	Appointments int           `json:"appointments"`
	Duration     time.Duration `json:"duration"`
}

var (
	firstNames = []string{
		"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
		"Linda", "David", "Elizabeth", "William", "Susan", "Richard", "Jessica",
		"Joseph", "Sarah", "Thomas", "Karen", "Daniel", "Lisa", "Matthew",
		"Nancy", "Anthony", "Betty", "Mark", "Margaret", "Steven", "Sandra",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor",
		"Thomas", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White",
	}
	specializations = []string{
		"General Medicine", "Cardiology", "Dermatology", "Pediatrics",
		"Orthopedics", "Neurology", "Ophthalmology", "Psychiatry",
	}
)

// Seeder creates sample accounts and appointments through the domain
// services so all the usual validation and hashing applies.
type Seeder struct {
	identity     *identity.Service
	appointments *appointment.Service
	log          zerolog.Logger
}

func New(identitySvc *identity.Service, apptSvc *appointment.Service, log zerolog.Logger) *Seeder {
	return &Seeder{identity: identitySvc, appointments: apptSvc, log: log}
}

// Run generates the dataset described by cfg. Existing accounts with
// colliding emails are skipped, so reruns are safe.
func (s *Seeder) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))
	result := &Result{}

	var doctors []*identity.Doctor
	for i := 0; i < cfg.DoctorCount; i++ {
		doc, err := s.identity.CreateDoctor(ctx, identity.CreateDoctorRequest{
			Registration: identity.Registration{
				FirstName: pick(rng, firstNames),
				LastName:  pick(rng, lastNames),
				Email:     fmt.Sprintf("doctor%d@clinicbook.dev", i+1),
				Password:  cfg.Password,
			},
			Specialization:  specializations[i%len(specializations)],
			ExperienceYears: 3 + rng.Intn(25),
			Fee:             int64(50 + rng.Intn(20)*10),
		})
		if err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				continue
			}
			return nil, fmt.Errorf("seeding doctor %d: %w", i+1, err)
		}
		doctors = append(doctors, doc)
		result.Doctors++
	}

	var patients []*identity.User
	for i := 0; i < cfg.PatientCount; i++ {
		p, err := s.identity.RegisterPatient(ctx, identity.Registration{
			FirstName: pick(rng, firstNames),
			LastName:  pick(rng, lastNames),
			Email:     fmt.Sprintf("patient%d@clinicbook.dev", i+1),
			Password:  cfg.Password,
		})
		if err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				continue
			}
			return nil, fmt.Errorf("seeding patient %d: %w", i+1, err)
		}
		patients = append(patients, p)
		result.Patients++
	}

	if len(patients) > 0 {
		for _, doc := range doctors {
			for i := 0; i < cfg.AppointmentsPerDoc; i++ {
				patient := patients[rng.Intn(len(patients))]
				when := slotTime(rng)
				view, err := s.appointments.Book(ctx, patient.ID, doc.ID, when.Format(booking.LocalDateTime))
				if err != nil {
					return nil, fmt.Errorf("seeding appointment: %w", err)
				}
				result.Appointments++

				actor := appointment.Actor{ID: doc.ID, Role: doc.Role}
				switch rng.Intn(4) {
				case 0:
					// leave PENDING
				case 1:
					_, err = s.appointments.Confirm(ctx, actor, view.ID)
				case 2:
					_, err = s.appointments.Complete(ctx, actor, view.ID)
				case 3:
					_, err = s.appointments.Cancel(ctx, actor, view.ID)
				}
				if err != nil {
					return nil, fmt.Errorf("advancing seeded appointment: %w", err)
				}
			}
		}
	}

	result.Duration = time.Since(start)
	s.log.Info().
		Int("doctors", result.Doctors).
		Int("patients", result.Patients).
		Int("appointments", result.Appointments).
		Dur("duration", result.Duration).
		Msg("sample data seeded")
	return result, nil
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

// slotTime produces a clinic-hours slot within the next two weeks, aligned
// to the 30-minute grid.
func slotTime(rng *rand.Rand) time.Time {
	day := time.Now().UTC().AddDate(0, 0, 1+rng.Intn(13))
	halfHours := rng.Intn((booking.ClosingHour - booking.OpeningHour) * 2)
	return time.Date(day.Year(), day.Month(), day.Day(), booking.OpeningHour, 0, 0, 0, time.UTC).
		Add(time.Duration(halfHours) * 30 * time.Minute)
}
