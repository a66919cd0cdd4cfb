package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"gigswap-bot/internal/domain"
)

// eventDateLayout — формат даты события (день-месяц-год), например "31-12-2024".
const eventDateLayout = "02-01-2006"

// OutcomeKind — вид результата обработки свободного текста.
type OutcomeKind int

const (
	// OutcomeNone — чат в Idle, текст не относится ни к одному диалогу.
	OutcomeNone OutcomeKind = iota
	// OutcomePrompt — поле черновика принято, нужно запросить следующее (Next).
	OutcomePrompt
	// OutcomeInvalidDate — дата не разобрана; состояние не изменилось.
	OutcomeInvalidDate
	// OutcomeDraftComplete — черновик заполнен целиком и готов к сохранению.
	OutcomeDraftComplete
	// OutcomeFilter — получен поисковый запрос по названию события.
	OutcomeFilter
	// OutcomeNumericRef — получен корректный номер объявления из списка.
	OutcomeNumericRef
	// OutcomeBadNumericRef — номер объявления не разобран; состояние сохранено.
	OutcomeBadNumericRef
	// OutcomeReview — получена корректная оценка для отзыва.
	OutcomeReview
	// OutcomeInvalidRating — оценка вне диапазона 1-5; состояние сохранено.
	OutcomeInvalidRating
)

// Outcome описывает результат одного шага конечного автомата.
// Формулировки ответов пользователю остаются на стороне диспетчера.
type Outcome struct {
	Kind OutcomeKind
	// Next — состояние после успешного перехода (для OutcomePrompt).
	Next State
	// Draft — заполненный черновик (для OutcomeDraftComplete).
	Draft domain.Draft
	// Query — поисковый запрос (для OutcomeFilter).
	Query string
	// Ref — номер объявления, начиная с 1 (для OutcomeNumericRef).
	Ref int
	// RefPurpose — состояние, запросившее номер: покупка, шаринг или отзывы.
	RefPurpose Kind
	// SellerChatID и Rating — данные отзыва (для OutcomeReview).
	SellerChatID int64
	Rating       int
}

// Store — потокобезопасное in-memory хранилище состояний диалогов и черновиков.
// Создается при старте процесса и передается компонентам явно.
type Store struct {
	mu     sync.RWMutex
	states map[int64]State
	drafts map[int64]*domain.Draft
}

// NewStore создает новый экземпляр Store.
func NewStore() *Store {
	return &Store{
		states: make(map[int64]State),
		drafts: make(map[int64]*domain.Draft),
	}
}

// Get возвращает текущее состояние чата. Отсутствие записи означает Idle.
func (s *Store) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[chatID]
}

// Set устанавливает состояние чата. Черновик при этом не затрагивается.
func (s *Store) Set(chatID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Kind == Idle {
		delete(s.states, chatID)
		return
	}
	s.states[chatID] = st
}

// Reset сбрасывает чат в Idle и удаляет его черновик.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
	delete(s.drafts, chatID)
}

// BeginSell начинает диалог продажи: пустой черновик и ожидание названия события.
// Уже существующий черновик чата отбрасывается.
func (s *Store) BeginSell(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = State{Kind: AwaitingEventName}
	s.drafts[chatID] = &domain.Draft{}
}

// Advance обрабатывает свободный текст согласно текущему состоянию чата.
// Переход, не прошедший валидацию, не продвигает состояние и не трогает черновик.
func (s *Store) Advance(chatID int64, text string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[chatID]
	text = strings.TrimSpace(text)

	switch st.Kind {
	case Idle:
		return Outcome{Kind: OutcomeNone}

	case AwaitingEventName, AwaitingQuantity, AwaitingEventDate,
		AwaitingLocation, AwaitingCategory, AwaitingPrice:
		return s.advanceSell(chatID, st, text)

	case AwaitingFilterEventName:
		delete(s.states, chatID)
		return Outcome{Kind: OutcomeFilter, Query: text}

	case AwaitingPurchaseListing, AwaitingShareListingNumber, AwaitingViewReviewListingNumber:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			// Номер не разобран: состояние сохраняется, диспетчер повторит вопрос.
			return Outcome{Kind: OutcomeBadNumericRef, RefPurpose: st.Kind}
		}
		delete(s.states, chatID)
		return Outcome{Kind: OutcomeNumericRef, Ref: n, RefPurpose: st.Kind}

	case AwaitingReview:
		rating, err := strconv.Atoi(text)
		if err != nil || rating < 1 || rating > 5 {
			return Outcome{Kind: OutcomeInvalidRating, SellerChatID: st.SellerChatID}
		}
		delete(s.states, chatID)
		return Outcome{Kind: OutcomeReview, SellerChatID: st.SellerChatID, Rating: rating}

	default:
		// Неизвестное состояние: восстанавливаемся сбросом в Idle.
		delete(s.states, chatID)
		delete(s.drafts, chatID)
		return Outcome{Kind: OutcomeNone}
	}
}

// advanceSell выполняет один шаг конвейера создания объявления.
// Вызывается под блокировкой.
func (s *Store) advanceSell(chatID int64, st State, text string) Outcome {
	draft, ok := s.drafts[chatID]
	if !ok {
		// Состояние продажи без черновика: восстанавливаемся сбросом в Idle.
		delete(s.states, chatID)
		return Outcome{Kind: OutcomeNone}
	}

	switch st.Kind {
	case AwaitingEventName:
		draft.EventName = text
		s.states[chatID] = State{Kind: AwaitingQuantity}
	case AwaitingQuantity:
		draft.Quantity = text
		s.states[chatID] = State{Kind: AwaitingEventDate}
	case AwaitingEventDate:
		if _, err := time.Parse(eventDateLayout, text); err != nil {
			return Outcome{Kind: OutcomeInvalidDate}
		}
		draft.EventDate = text
		s.states[chatID] = State{Kind: AwaitingLocation}
	case AwaitingLocation:
		draft.Location = text
		s.states[chatID] = State{Kind: AwaitingCategory}
	case AwaitingCategory:
		draft.Category = text
		s.states[chatID] = State{Kind: AwaitingPrice}
	case AwaitingPrice:
		draft.Price = text
		completed := *draft
		delete(s.states, chatID)
		delete(s.drafts, chatID)
		return Outcome{Kind: OutcomeDraftComplete, Draft: completed}
	}

	return Outcome{Kind: OutcomePrompt, Next: s.states[chatID]}
}
