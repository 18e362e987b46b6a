package bootstrap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"hospital-scheduler/internal/domain/entity"
	domainRepo "hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/repository"
	"hospital-scheduler/internal/scheduling"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls the demo data written by the seed command
type SeedOptions struct {
	Doctors         int
	AppointmentsPer int
	AdminEmail      string
	AdminPassword   string
	DoctorPassword  string
}

var (
	seedSpecializations = []string{
		"Cardiology",
		"Dermatology",
		"General Medicine",
		"Neurology",
		"Orthopedics",
		"Pediatrics",
		"ENT",
	}
	seedDesignations = []string{"Consultant", "Senior Consultant", "Resident"}
	seedHours        = [][2]string{
		{"09:00 AM", "05:00 PM"},
		{"10:00 AM", "06:00 PM"},
		{"11:00 AM", "07:00 PM"},
	}
	seedReasons = []string{"Follow-up", "Fever", "Routine check-up", "Back pain", "Skin rash", "Headache"}
)

// Seed writes an admin login, doctors with their staff logins and a handful of
// appointments on the next IST day. Existing rows are left alone.
func Seed(ctx context.Context, db *gorm.DB, grid scheduling.Grid, opts SeedOptions) error {
	log := logrus.StandardLogger()
	staffRepo := repository.NewStaffRepository()
	doctorRepo := repository.NewDoctorRepository()
	appointmentRepo := repository.NewAppointmentRepository()

	if err := seedStaff(ctx, db, staffRepo, opts.AdminEmail, opts.AdminPassword, entity.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Infof("Admin login ready: %s", opts.AdminEmail)

	day, err := scheduling.ParseDate(scheduling.DateOf(time.Now().AddDate(0, 0, 1)))
	if err != nil {
		return err
	}

	for i := 0; i < opts.Doctors; i++ {
		hours := seedHours[gofakeit.Number(0, len(seedHours)-1)]
		name := gofakeit.LastName()
		doctor := &entity.Doctor{
			Email:          strings.ToLower(fmt.Sprintf("dr.%s.%d@hospital.local", name, i+1)),
			Name:           "Dr. " + gofakeit.FirstName() + " " + name,
			Designation:    seedDesignations[gofakeit.Number(0, len(seedDesignations)-1)],
			Specialization: seedSpecializations[gofakeit.Number(0, len(seedSpecializations)-1)],
			Qualification:  "MBBS, MD",
			Experience:     fmt.Sprintf("%d years", gofakeit.Number(2, 30)),
			State:          gofakeit.State(),
			City:           gofakeit.City(),
			WorkStart:      hours[0],
			WorkEnd:        hours[1],
			Availability:   true,
		}

		existing, err := doctorRepo.FindByEmail(ctx, db, doctor.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		if err := doctorRepo.Create(ctx, db, doctor); err != nil {
			return fmt.Errorf("seed doctor %s: %w", doctor.Email, err)
		}
		if err := seedStaff(ctx, db, staffRepo, doctor.Email, opts.DoctorPassword, entity.RoleDoctor); err != nil {
			return fmt.Errorf("seed doctor login %s: %w", doctor.Email, err)
		}

		booked, err := seedAppointments(ctx, db, appointmentRepo, grid, doctor, day, opts.AppointmentsPer)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"doctor":       doctor.Email,
			"appointments": booked,
		}).Info("Doctor seeded")
	}

	return nil
}

func seedStaff(ctx context.Context, db *gorm.DB, staffRepo domainRepo.StaffRepository, email, password, role string) error {
	existing, err := staffRepo.FindByEmail(ctx, db, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return staffRepo.Create(ctx, db, &entity.Staff{
		Email:    email,
		Password: string(hashed),
		Role:     role,
	})
}

func seedAppointments(
	ctx context.Context,
	db *gorm.DB,
	appointmentRepo domainRepo.AppointmentRepository,
	grid scheduling.Grid,
	doctor *entity.Doctor,
	day time.Time,
	count int,
) (int, error) {
	slots, err := grid.Generate(doctor.WorkStart, doctor.WorkEnd)
	if err != nil {
		return 0, err
	}

	booked := 0
	for _, idx := range rand.Perm(len(slots)) {
		if booked >= count {
			break
		}
		appt := &entity.Appointment{
			FullName:    gofakeit.Name(),
			Email:       gofakeit.Email(),
			Phone:       gofakeit.Phone(),
			Reason:      seedReasons[gofakeit.Number(0, len(seedReasons)-1)],
			Doctor:      doctor.Name,
			DoctorEmail: doctor.Email,
			Date:        day,
			Time:        slots[idx].Start,
			Status:      entity.AppointmentStatusPending,
			State:       doctor.State,
			City:        doctor.City,
		}
		if err := appointmentRepo.Create(ctx, db, appt); err != nil {
			return booked, fmt.Errorf("seed appointment %s %s: %w", doctor.Email, appt.Time, err)
		}
		booked++
	}
	return booked, nil
}
