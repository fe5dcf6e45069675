package models

// OrderStatus константы статусов заказов
const (
	OrderStatusNew            = "new"
	OrderStatusWaitingPayment = "waiting_payment"
	OrderStatusInProgress     = "in_progress"
	OrderStatusReview         = "review"
	OrderStatusRevision       = "revision"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// OfferStatus константы статусов предложений (как индивидуальных, так и готовых работ)
const (
	OfferStatusNew      = "new"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// DeliveryStatus константы статусов сдачи готовой работы
const (
	DeliveryStatusPending        = "pending"
	DeliveryStatusAwaitingUpload = "awaiting_upload"
	DeliveryStatusDelivered      = "delivered"
	DeliveryStatusAccepted       = "accepted"
	DeliveryStatusRejected       = "rejected"
)

// MessageType константы типов сообщений
const (
	MessageTypeText      = "text"
	MessageTypeOffer     = "offer"
	MessageTypeWorkOffer = "work_offer"
	MessageTypeFile      = "file"
)

// ClaimCategory константы категорий претензий
const (
	ClaimCategoryNotDelivered = "not_delivered"
	ClaimCategoryPoorQuality  = "poor_quality"
	ClaimCategoryUnpaid       = "unpaid"
	ClaimCategoryUnfairReview = "unfair_review"
	ClaimCategoryListingIssue = "listing_issue"
	ClaimCategoryOther        = "other"
)

// OrderRelevance уточнение для претензии "работа не сдана": нужна ли ещё работа.
const (
	OrderRelevanceStillWanted    = "still_wanted"
	OrderRelevanceNoLongerWanted = "no_longer_wanted"
)

// RefundType уточнение для претензии "работа не сдана": какой возврат требуется.
const (
	RefundTypePrepayment        = "prepayment"
	RefundTypePrepaymentPenalty = "prepayment_penalty"
	RefundTypeNone              = "none"
)

// Роли пользователей, приходящие из access токена.
const (
	RoleClient  = "client"
	RoleExpert  = "expert"
	RoleSupport = "support"
)

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusNew:            {},
	OrderStatusWaitingPayment: {},
	OrderStatusInProgress:     {},
	OrderStatusReview:         {},
	OrderStatusRevision:       {},
	OrderStatusCompleted:      {},
	OrderStatusCancelled:      {},
}

// TerminalOrderStatuses статусы, из которых нет переходов.
var TerminalOrderStatuses = map[string]struct{}{
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// ValidClaimCategories список валидных категорий претензий
var ValidClaimCategories = map[string]struct{}{
	ClaimCategoryNotDelivered: {},
	ClaimCategoryPoorQuality:  {},
	ClaimCategoryUnpaid:       {},
	ClaimCategoryUnfairReview: {},
	ClaimCategoryListingIssue: {},
	ClaimCategoryOther:        {},
}

// ValidOrderRelevances список валидных ответов об актуальности заказа
var ValidOrderRelevances = map[string]struct{}{
	OrderRelevanceStillWanted:    {},
	OrderRelevanceNoLongerWanted: {},
}

// ValidRefundTypes список валидных вариантов возврата
var ValidRefundTypes = map[string]struct{}{
	RefundTypePrepayment:        {},
	RefundTypePrepaymentPenalty: {},
	RefundTypeNone:              {},
}
