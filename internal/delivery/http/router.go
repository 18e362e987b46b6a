package http

import (
	"net/http"

	"hospital-scheduler/internal/delivery/http/handler"
	"hospital-scheduler/internal/delivery/http/middleware"
	"hospital-scheduler/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	slotHandler        *handler.SlotHandler
	appointmentHandler *handler.AppointmentHandler
	rescheduleHandler  *handler.RescheduleHandler
	disruptionHandler  *handler.DisruptionHandler
	doctorHandler      *handler.DoctorHandler
	leaveHandler       *handler.LeaveHandler
	auditLogHandler    *handler.AuditLogHandler
	webhookHandler     *handler.WebhookHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	rateLimiter        *middleware.RateLimiter
}

func NewRouter(
	authHandler *handler.AuthHandler,
	slotHandler *handler.SlotHandler,
	appointmentHandler *handler.AppointmentHandler,
	rescheduleHandler *handler.RescheduleHandler,
	disruptionHandler *handler.DisruptionHandler,
	doctorHandler *handler.DoctorHandler,
	leaveHandler *handler.LeaveHandler,
	auditLogHandler *handler.AuditLogHandler,
	webhookHandler *handler.WebhookHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		slotHandler:        slotHandler,
		appointmentHandler: appointmentHandler,
		rescheduleHandler:  rescheduleHandler,
		disruptionHandler:  disruptionHandler,
		doctorHandler:      doctorHandler,
		leaveHandler:       leaveHandler,
		auditLogHandler:    auditLogHandler,
		webhookHandler:     webhookHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		rateLimiter:        rateLimiter,
	}
}

func (r *Router) Setup() *mux.Router {
	// Health check
	r.router.HandleFunc("/api/v1/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes. One /api subrouter so a method mismatch survives to the 405 handler.
	api := r.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/slots", r.slotHandler.GetSlots).Methods(http.MethodGet)
	api.HandleFunc("/reschedule/{token}", r.rescheduleHandler.FetchSession).Methods(http.MethodGet)
	api.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{email}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// Public writes (rate limited per client IP)
	api.Handle("/auth/login", r.limited(r.authHandler.Login)).Methods(http.MethodPost)
	api.Handle("/appointments", r.limited(r.appointmentHandler.CreateAppointment)).Methods(http.MethodPost)
	api.Handle("/reschedule/{token}", r.limited(r.rescheduleHandler.CommitReschedule)).Methods(http.MethodPost)
	api.Handle("/webhook", r.limited(r.webhookHandler.Fulfill)).Methods(http.MethodPost)

	// Auth routes (protected)
	api.Handle("/auth/logout", r.authMiddleware.Authenticate(http.HandlerFunc(r.authHandler.Logout))).Methods(http.MethodPost)

	// Doctor routes (protected - any staff, doctors limited to their own calendar)
	doctor := r.router.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireStaff)
	doctor.HandleFunc("/leave", r.leaveHandler.RequestLeave).Methods(http.MethodPost)
	doctor.HandleFunc("/leave/{email}", r.leaveHandler.GetLeavesByDoctor).Methods(http.MethodGet)
	doctor.HandleFunc("/cancel-day", r.disruptionHandler.CancelDay).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := r.router.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{email}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{email}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{email}", r.doctorHandler.DeleteDoctor).Methods(http.MethodDelete)
	admin.HandleFunc("/cancel-day", r.disruptionHandler.CancelDay).Methods(http.MethodPost)
	admin.HandleFunc("/slots", r.slotHandler.GetSlots).Methods(http.MethodGet)

	// Appointment management (admin)
	admin.HandleFunc("/appointments", r.appointmentHandler.GetAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/count/{doctorEmail}", r.appointmentHandler.CountByDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/appointments/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)

	// Leave review and audit (admin)
	admin.HandleFunc("/leave", r.leaveHandler.GetAllLeaves).Methods(http.MethodGet)
	admin.HandleFunc("/leave/{id}", r.leaveHandler.UpdateLeaveStatus).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Unmatched requests skip router middleware, so CORS wraps them directly.
	// Preflights land here because no route is registered for OPTIONS.
	r.router.NotFoundHandler = r.corsMiddleware.Handle(http.HandlerFunc(notFound))
	r.router.MethodNotAllowedHandler = r.corsMiddleware.Handle(http.HandlerFunc(methodNotAllowed))

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func (r *Router) limited(h http.HandlerFunc) http.Handler {
	return r.rateLimiter.Handle(h)
}

func notFound(w http.ResponseWriter, req *http.Request) {
	response.NotFound(w, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, req *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
