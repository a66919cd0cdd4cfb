package domain

import "time"

// Listing представляет одно объявление о продаже билетов.
// Это наша внутренняя модель; формат хранения определяется в пакете storage.
type Listing struct {
	// ID — идентификатор записи в хранилище (hex-строка ObjectID).
	ID string
	// OwnerChatID — чат продавца, создавшего объявление.
	OwnerChatID int64
	EventName   string
	Quantity    string
	EventDate   string
	Location    string
	Category    string
	Price       string
	// ShareToken — глобально уникальный токен для deep-link доступа к объявлению.
	ShareToken string
	// UpdatedAt — дата последнего изменения записи.
	UpdatedAt time.Time
}

// Review представляет один отзыв покупателя о продавце.
// Запись неизменяема после создания.
type Review struct {
	ID          string
	BuyerChatID int64
	// SellerChatID — чат продавца, к которому относится отзыв.
	SellerChatID int64
	// Rating — целочисленная оценка от 1 до 5 включительно.
	Rating    int
	CreatedAt time.Time
}

// Draft представляет черновик объявления, заполняемый по одному полю
// в процессе диалога продажи. Существует только пока активна сессия продажи.
type Draft struct {
	EventName string
	Quantity  string
	EventDate string
	Location  string
	Category  string
	Price     string
}

// Listing собирает из заполненного черновика готовое объявление.
// Токен и владелец передаются снаружи: черновик о них ничего не знает.
func (d *Draft) Listing(ownerChatID int64, shareToken string, now time.Time) Listing {
	return Listing{
		OwnerChatID: ownerChatID,
		EventName:   d.EventName,
		Quantity:    d.Quantity,
		EventDate:   d.EventDate,
		Location:    d.Location,
		Category:    d.Category,
		Price:       d.Price,
		ShareToken:  shareToken,
		UpdatedAt:   now,
	}
}
