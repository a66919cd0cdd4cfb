// Package relay сводит покупателя и продавца в анонимный канал пересылки
// сообщений и ведет FIFO-очереди ожидания к занятым продавцам.
package relay

import "sync"

// ConnectStatus — результат попытки соединения покупателя с продавцом.
type ConnectStatus int

const (
	// Connected — пара создана, обе стороны соединены.
	Connected ConnectStatus = iota
	// Queued — продавец занят, покупатель поставлен в его очередь.
	Queued
	// AlreadyQueued — покупатель уже ждет в какой-то очереди.
	AlreadyQueued
	// BuyerBusy — покупатель уже находится в активном чате.
	BuyerBusy
	// SelfPurchase — покупатель попытался связаться с самим собой.
	SelfPurchase
)

// ConnectResult описывает исход Connect.
type ConnectResult struct {
	Status ConnectStatus
	// Position — позиция покупателя в очереди, начиная с 1 (для Queued).
	Position int
}

// DisconnectResult описывает исход Disconnect.
type DisconnectResult struct {
	// WasPaired — был ли чат в активной паре.
	WasPaired bool
	// Partner — вторая сторона разорванной пары.
	Partner int64
	// Seller — продавец разорванной пары (одна из двух сторон).
	Seller int64
	// Rematched — продавец сразу соединен со следующим покупателем из очереди.
	Rematched bool
	// NextBuyer — покупатель, с которым соединен освободившийся продавец.
	NextBuyer int64
}

// Stats — счетчики для эксплуатационного сервера.
type Stats struct {
	ActivePairs   int `json:"active_pairs"`
	WaitingBuyers int `json:"waiting_buyers"`
	Queues        int `json:"queues"`
}

// Matcher владеет таблицей активных пар и очередями ожидания.
// Все мутации выполняются под одним мьютексом: односторонняя пара или
// двойное извлечение головы очереди невозможны.
type Matcher struct {
	mu sync.Mutex
	// partners — симметричная таблица пар: partners[a] == b влечет partners[b] == a.
	partners map[int64]int64
	// sellers отмечает, какая сторона каждой активной пары является продавцом.
	sellers map[int64]bool
	// queues — FIFO-очереди покупателей по чату продавца.
	queues map[int64][]int64
	// queuedFor — обратный индекс: в чьей очереди ждет покупатель.
	// Чат может ждать не более чем в одной очереди.
	queuedFor map[int64]int64
}

// NewMatcher создает новый экземпляр Matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		partners:  make(map[int64]int64),
		sellers:   make(map[int64]bool),
		queues:    make(map[int64][]int64),
		queuedFor: make(map[int64]int64),
	}
}

// Connect соединяет покупателя с продавцом либо ставит его в очередь,
// если продавец уже занят. Пара создается атомарно для обеих сторон.
func (m *Matcher) Connect(buyerChatID, sellerChatID int64) ConnectResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if buyerChatID == sellerChatID {
		return ConnectResult{Status: SelfPurchase}
	}
	if _, paired := m.partners[buyerChatID]; paired {
		return ConnectResult{Status: BuyerBusy}
	}
	if _, waiting := m.queuedFor[buyerChatID]; waiting {
		return ConnectResult{Status: AlreadyQueued}
	}

	if _, busy := m.partners[sellerChatID]; busy {
		m.queues[sellerChatID] = append(m.queues[sellerChatID], buyerChatID)
		m.queuedFor[buyerChatID] = sellerChatID
		return ConnectResult{Status: Queued, Position: len(m.queues[sellerChatID])}
	}

	m.pair(buyerChatID, sellerChatID)
	return ConnectResult{Status: Connected}
}

// Partner возвращает вторую сторону активной пары чата, если она есть.
func (m *Matcher) Partner(chatID int64) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	partner, ok := m.partners[chatID]
	return partner, ok
}

// Disconnect разрывает активную пару чата с обеих сторон. Если продавец
// разорванной пары имел непустую очередь, голова очереди извлекается и
// новая пара создается в том же атомарном шаге.
func (m *Matcher) Disconnect(chatID int64) DisconnectResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	partner, ok := m.partners[chatID]
	if !ok {
		return DisconnectResult{}
	}

	// Очередь проверяется у той стороны, которая была продавцом пары,
	// независимо от того, кто разорвал чат.
	seller := chatID
	if m.sellers[partner] {
		seller = partner
	}

	delete(m.partners, chatID)
	delete(m.partners, partner)
	delete(m.sellers, chatID)
	delete(m.sellers, partner)

	res := DisconnectResult{WasPaired: true, Partner: partner, Seller: seller}

	queue := m.queues[seller]
	if len(queue) == 0 {
		delete(m.queues, seller)
		return res
	}

	next := queue[0]
	if len(queue) == 1 {
		delete(m.queues, seller)
	} else {
		m.queues[seller] = queue[1:]
	}
	delete(m.queuedFor, next)
	m.pair(next, seller)

	res.Rematched = true
	res.NextBuyer = next
	return res
}

// Stats возвращает текущие счетчики пар и очередей.
func (m *Matcher) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	waiting := 0
	for _, q := range m.queues {
		waiting += len(q)
	}
	return Stats{
		ActivePairs:   len(m.partners) / 2,
		WaitingBuyers: waiting,
		Queues:        len(m.queues),
	}
}

// pair создает симметричную пару покупатель-продавец. Вызывается под блокировкой.
func (m *Matcher) pair(buyerChatID, sellerChatID int64) {
	m.partners[buyerChatID] = sellerChatID
	m.partners[sellerChatID] = buyerChatID
	m.sellers[sellerChatID] = true
}
