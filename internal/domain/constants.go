package domain

// Default configuration values
const (
	DefaultSlotCapacity            = 1
	DefaultAdvanceBookingDays      = 0  // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 60 // 1 hour
	DefaultTimezone                = "Asia/Manila"
)

// DefaultSlotLabels фиксированный дневной шаблон слотов (с обеденным перерывом 11:00-13:00)
var DefaultSlotLabels = []SlotLabel{
	"08:00 AM",
	"09:00 AM",
	"10:00 AM",
	"11:00 AM",
	"01:00 PM",
	"02:00 PM",
	"03:00 PM",
	"04:00 PM",
}

// Business validation constants
const (
	MinSlotCapacity         = 1
	MaxSlotCapacity         = 100
	MaxAdvanceBookingDays   = 365
	MaxNotesLength          = 500
	MaxReasonLength         = 500
	MaxProofImages          = 10
	MaxProofImageRefLength  = 1024
	MinServiceDurationHours = 1
	MaxServiceNameLength    = 200
)

// Time format constants
const (
	SlotLabelFormat = "03:04 PM"   // 09:00 AM
	DateFormat      = "2006-01-02" // YYYY-MM-DD
)

// AllStatuses все статусы бронирования
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
}

// ActiveStatuses статусы, занимающие слот
// Используется при подсчёте занятости слотов
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// InactiveStatuses терминальные статусы, освобождающие слот
var InactiveStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
}
