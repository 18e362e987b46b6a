package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-scheduler/internal/converter"
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/delivery/http/middleware"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/infrastructure/translate"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrDoctorEmailExists = errors.New("doctor email already exists")
	ErrInvalidWorkHours  = errors.New("working hours must start before they end")
)

const (
	MsgDoctorUpdated = "Doctor updated successfully"

	// translateConcurrency bounds parallel translator calls for one listing
	translateConcurrency = 8
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, req *dto.ListDoctorsRequest) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, email, lang string) (*dto.DoctorResponse, error)
	// UpdateDoctor applies a partial update. Flipping availability from true
	// to false disrupts the chosen day from the moment of the flip onward.
	UpdateDoctor(ctx context.Context, email string, req *dto.UpdateDoctorRequest) (*dto.UpdateDoctorResponse, error)
	DeleteDoctor(ctx context.Context, email string) error
}

type doctorUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorRepo        repository.DoctorRepository
	staffRepo         repository.StaffRepository
	disruptionUsecase DisruptionUsecase
	translator        translate.Translator
	auditService      service.AuditService
	now               func() time.Time
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	staffRepo repository.StaffRepository,
	disruptionUsecase DisruptionUsecase,
	translator translate.Translator,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:                db,
		log:               log,
		doctorRepo:        doctorRepo,
		staffRepo:         staffRepo,
		disruptionUsecase: disruptionUsecase,
		translator:        translator,
		auditService:      auditService,
		now:               time.Now,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	if err := validateWorkHours(req.WorkStart, req.WorkEnd); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	available := true
	if req.Availability != nil {
		available = *req.Availability
	}

	doctor := &entity.Doctor{
		Email:          req.Email,
		Name:           req.Name,
		Designation:    req.Designation,
		Specialization: req.Specialization,
		About:          req.About,
		Qualification:  req.Qualification,
		Experience:     req.Experience,
		State:          req.State,
		City:           req.City,
		WorkStart:      req.WorkStart,
		WorkEnd:        req.WorkEnd,
		Availability:   available,
	}
	if !available {
		now := u.now()
		doctor.UnavailableSince = &now
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.doctorRepo.Create(ctx, tx, doctor); err != nil {
			return err
		}
		staff := &entity.Staff{
			Email:    req.Email,
			Password: string(hashedPassword),
			Role:     entity.RoleDoctor,
		}
		if err := u.staffRepo.Create(ctx, tx, staff); err != nil {
			return err
		}
		return u.auditService.LogCreate(ctx, tx, staffID, entity.AuditActionDoctorCreate, doctor.Email, converter.DoctorToResponse(doctor))
	})
	if err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrDoctorEmailExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context, req *dto.ListDoctorsRequest) (*dto.DoctorListResponse, error) {
	filter := entity.DoctorFilter{}
	lang := translate.DefaultLang
	if req != nil {
		filter = entity.DoctorFilter{
			Name:           req.Name,
			Specialization: req.Specialization,
			City:           req.City,
		}
		lang = translate.NormalizeLang(req.Lang)
	}

	doctors, err := u.doctorRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	responses := converter.DoctorsToResponses(doctors)
	if lang != translate.DefaultLang {
		var g errgroup.Group
		g.SetLimit(translateConcurrency)
		for i := range responses {
			resp := &responses[i]
			g.Go(func() error {
				u.localize(ctx, resp, lang)
				return nil
			})
		}
		_ = g.Wait()
	}

	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, email, lang string) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", email, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	resp := converter.DoctorToResponse(doctor)
	if lang = translate.NormalizeLang(lang); lang != translate.DefaultLang {
		u.localize(ctx, resp, lang)
	}
	return resp, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, email string, req *dto.UpdateDoctorRequest) (*dto.UpdateDoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", email, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	old := *converter.DoctorToResponse(doctor)
	wasAvailable := doctor.Availability

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Designation != "" {
		doctor.Designation = req.Designation
	}
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.About != "" {
		doctor.About = req.About
	}
	if req.Qualification != "" {
		doctor.Qualification = req.Qualification
	}
	if req.Experience != "" {
		doctor.Experience = req.Experience
	}
	if req.State != "" {
		doctor.State = req.State
	}
	if req.City != "" {
		doctor.City = req.City
	}
	if req.WorkStart != "" {
		doctor.WorkStart = req.WorkStart
	}
	if req.WorkEnd != "" {
		doctor.WorkEnd = req.WorkEnd
	}
	if err := validateWorkHours(doctor.WorkStart, doctor.WorkEnd); err != nil {
		return nil, err
	}

	now := u.now()
	if req.Availability != nil {
		doctor.Availability = *req.Availability
		switch {
		case wasAvailable && !doctor.Availability:
			doctor.UnavailableSince = &now
		case doctor.Availability:
			doctor.UnavailableSince = nil
		}
	}
	flipped := wasAvailable && !doctor.Availability

	var day time.Time
	if flipped {
		date := req.UnavailableDate
		if date == "" {
			date = scheduling.DateOf(now)
		}
		if day, err = scheduling.ParseDate(date); err != nil {
			return nil, err
		}
	}

	if err := u.doctorRepo.Update(ctx, u.db, doctor); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", email, err)
		return nil, err
	}

	resp := &dto.UpdateDoctorResponse{
		Doctor:  *converter.DoctorToResponse(doctor),
		Message: MsgDoctorUpdated,
	}

	if flipped {
		result, err := u.disruptionUsecase.HandleDisruption(ctx, doctor, day, &now)
		if err != nil {
			// put the flag back so a retried update is still a true -> false flip
			if rbErr := u.doctorRepo.SetAvailability(context.WithoutCancel(ctx), u.db, doctor.Email, true, nil); rbErr != nil {
				u.log.Errorf("Failed to restore availability for %s: %+v", doctor.Email, rbErr)
			}
			return nil, err
		}
		resp.Notified = result.Notified
		resp.Message = fmt.Sprintf("Doctor updated – %d patient(s) asked to reschedule", result.Notified)
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogUpdate(ctx, u.db, staffID, entity.AuditActionDoctorUpdate, doctor.Email, old, converter.DoctorToResponse(doctor))

	return resp, nil
}

func (u *doctorUsecase) DeleteDoctor(ctx context.Context, email string) error {
	doctor, err := u.doctorRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", email, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := u.doctorRepo.Delete(ctx, tx, email); err != nil {
			return err
		}
		if err := u.staffRepo.DeleteByEmail(ctx, tx, email); err != nil {
			return err
		}
		return u.auditService.LogDelete(ctx, tx, staffID, entity.AuditActionDoctorDelete, email, converter.DoctorToResponse(doctor))
	})
	if err != nil {
		u.log.Warnf("Failed to delete doctor %s: %+v", email, err)
		return err
	}
	return nil
}

// localize translates the free-text fields of one listing entry in place
func (u *doctorUsecase) localize(ctx context.Context, resp *dto.DoctorResponse, lang string) {
	resp.Name = translate.Passthrough(ctx, u.translator, resp.Name, lang)
	resp.Designation = translate.Passthrough(ctx, u.translator, resp.Designation, lang)
	resp.Specialization = translate.Passthrough(ctx, u.translator, resp.Specialization, lang)
	resp.About = translate.Passthrough(ctx, u.translator, resp.About, lang)
	resp.State = translate.Passthrough(ctx, u.translator, resp.State, lang)
	resp.City = translate.Passthrough(ctx, u.translator, resp.City, lang)
}

func validateWorkHours(start, end string) error {
	from, err := scheduling.ParseClock(start)
	if err != nil {
		return err
	}
	to, err := scheduling.ParseClock(end)
	if err != nil {
		return err
	}
	if from >= to {
		return ErrInvalidWorkHours
	}
	return nil
}
