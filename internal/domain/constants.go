package domain

// Default configuration values
const (
	DefaultServiceDurationMinutes = 60
	DefaultPartySize              = 1
	DefaultLockTimeoutMillis      = 3000
)

// Business validation constants
const (
	MinPartySize                = 1
	MaxBufferMinutes            = 1440 // 1 day
	MaxClientNameLength         = 255
	MaxCancellationReasonLength = 500
)

// TimeFormat is the wire format of instants
const TimeFormat = "2006-01-02T15:04:05Z07:00" // RFC 3339

// InactiveStatuses список статусов, не занимающих время исполнителя
// Используется для фильтрации при поиске пересечений
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}

// TerminalStatuses statuses after which no transition is allowed
var TerminalStatuses = InactiveStatuses

// OccupyingStatuses statuses that count against provider time
var OccupyingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
