// Package session реализует конечный автомат диалога: по одному состоянию
// на чат плюс черновик объявления, заполняемый в процессе продажи.
package session

// Kind — вид состояния диалога.
type Kind int

const (
	// Idle — диалог не начат; отсутствие записи о чате эквивалентно Idle.
	Idle Kind = iota
	AwaitingEventName
	AwaitingQuantity
	AwaitingEventDate
	AwaitingLocation
	AwaitingCategory
	AwaitingPrice
	AwaitingFilterEventName
	AwaitingPurchaseListing
	AwaitingShareListingNumber
	AwaitingViewReviewListingNumber
	AwaitingReview
)

// State — состояние диалога одного чата. Для AwaitingReview дополнительно
// хранится чат продавца, которому предназначен отзыв.
type State struct {
	Kind         Kind
	SellerChatID int64
}

// String возвращает имя состояния для логов.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case AwaitingEventName:
		return "awaiting_event_name"
	case AwaitingQuantity:
		return "awaiting_quantity"
	case AwaitingEventDate:
		return "awaiting_event_date"
	case AwaitingLocation:
		return "awaiting_location"
	case AwaitingCategory:
		return "awaiting_category"
	case AwaitingPrice:
		return "awaiting_price"
	case AwaitingFilterEventName:
		return "awaiting_filter_event_name"
	case AwaitingPurchaseListing:
		return "awaiting_purchase_listing"
	case AwaitingShareListingNumber:
		return "awaiting_share_listing_number"
	case AwaitingViewReviewListingNumber:
		return "awaiting_view_review_listing_number"
	case AwaitingReview:
		return "awaiting_review"
	default:
		return "unknown"
	}
}
