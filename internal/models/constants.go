package models

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
)

const (
	PackageTypeValentine = "VALENTINE"
	PackageTypeChristmas = "CHRISTMAS"
	PackageTypeEaster    = "EASTER"
	PackageTypeEid       = "EID"
	PackageTypeMadaraka  = "MADARAKA"
	PackageTypeWeekend   = "WEEKEND"
	PackageTypeHoneymoon = "HONEYMOON"
	PackageTypeOther     = "OTHER"
)

// PackageTypes lists the campaign categories in display order.
var PackageTypes = []string{
	PackageTypeValentine,
	PackageTypeChristmas,
	PackageTypeEaster,
	PackageTypeEid,
	PackageTypeMadaraka,
	PackageTypeWeekend,
	PackageTypeHoneymoon,
	PackageTypeOther,
}

const (
	// DefaultPageSize размер страницы списков в портале
	DefaultPageSize = 9

	// DefaultCacheTTL время жизни кэша списка пакетов в секундах
	DefaultCacheTTL = 5 * 60

	// WorkerQueueSize размер внутренней очереди воркера уведомлений
	WorkerQueueSize = 128

	// SupportContact официальный номер в письмах клиентам
	SupportContact = "+254 123 456 789"
)
