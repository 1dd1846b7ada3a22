package network

import (
	"sync"

	"dungeon-server/pkg/api"
)

// Broadcaster занимается только рассылкой сообщений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ключ профиля игрока -> личный канал
	subscribers map[string]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
	}
}

// Register создает личный канал для игрока
func (b *Broadcaster) Register(key string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[key]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, 100)
	b.subscribers[key] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[key]; ok {
		close(ch)
		delete(b.subscribers, key)
	}
}

// SendTo отправляет сообщение конкретному подписчику (Unicast).
// Переполненный канал роняет сообщение, не блокируя тик-цикл.
func (b *Broadcaster) SendTo(key string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[key]; ok {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Broadcast отправляет всем подписчикам
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber: подключен ли игрок прямо сейчас
func (b *Broadcaster) HasSubscriber(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[key]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
