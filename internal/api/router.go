package api

import (
	"net/http"

	"github.com/gorilla/mux"

	cancelBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/create_booking"
	createServiceHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/create_service"
	exportBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/export_bookings"
	getAvailableSlotsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_booking"
	getBookingHistoryHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_booking_history"
	getCustomerBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_customer_bookings"
	getServiceHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_service"
	getTechnicianBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_technician_bookings"
	listBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/list_bookings"
	listServicesHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/list_services"
	setServiceStatusHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/set_service_status"
	transitionBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/transition_booking"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/pkg/logger"
)

// Handlers набор HTTP обработчиков сервиса
type Handlers struct {
	GetAvailableSlots     *getAvailableSlotsHandler.Handler
	CreateBooking         *createBookingHandler.Handler
	GetBooking            *getBookingHandler.Handler
	GetBookingHistory     *getBookingHistoryHandler.Handler
	CancelBooking         *cancelBookingHandler.Handler
	TransitionBooking     *transitionBookingHandler.Handler
	GetCustomerBookings   *getCustomerBookingsHandler.Handler
	GetTechnicianBookings *getTechnicianBookingsHandler.Handler
	ListBookings          *listBookingsHandler.Handler
	ExportBookings        *exportBookingsHandler.Handler
	ListServices          *listServicesHandler.Handler
	GetService            *getServiceHandler.Handler
	CreateService         *createServiceHandler.Handler
	SetServiceStatus      *setServiceStatusHandler.Handler
}

// Options необязательные части роутера; nil поля отключают соответствующий функционал
type Options struct {
	Metrics        middleware.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string
	RateLimiter    *middleware.RateLimiter
	AccessLog      *logger.Logger
}

// NewRouter собирает маршруты /api/v1
func NewRouter(h Handlers, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if opts.AccessLog != nil {
		r.Use(middleware.AccessLog(opts.AccessLog))
	}

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
	}

	// Metrics endpoint (публичный, без аутентификации)
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.MetricsHandler).Methods(http.MethodGet)
	}

	limit := func(fn http.HandlerFunc) http.Handler {
		if opts.RateLimiter == nil {
			return fn
		}
		return opts.RateLimiter.Middleware(fn)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты на дату
	api.HandleFunc("/slots", h.GetAvailableSlots.Handle).Methods(http.MethodGet)

	// Каталог услуг
	api.HandleFunc("/services", h.ListServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId:[0-9]+}", h.GetService.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.Handle("/bookings", limit(h.CreateBooking.Handle)).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", h.ListBookings.Handle).Methods(http.MethodGet)

	// Выгрузка регистрируется до /bookings/{bookingId}
	protected.HandleFunc("/bookings/export", h.ExportBookings.Handle).Methods(http.MethodGet)

	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", h.GetBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/history", h.GetBookingHistory.Handle).Methods(http.MethodGet)
	protected.Handle("/bookings/{bookingId:[0-9]+}/cancel", limit(h.CancelBooking.Handle)).Methods(http.MethodPatch)
	protected.Handle("/bookings/{bookingId:[0-9]+}/status", limit(h.TransitionBooking.Handle)).Methods(http.MethodPatch)

	// --- Истории ---
	protected.HandleFunc("/customers/{customerId:[0-9]+}/bookings", h.GetCustomerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/technicians/{technicianId:[0-9]+}/bookings", h.GetTechnicianBookings.Handle).Methods(http.MethodGet)

	// --- Каталог (для менеджеров) ---
	protected.HandleFunc("/services", h.CreateService.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/services/{serviceId:[0-9]+}/status", h.SetServiceStatus.Handle).Methods(http.MethodPatch)

	return r
}
