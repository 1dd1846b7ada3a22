package engine

import "time"

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно. Один и тот же сид дает один и тот же мир,
	// раскладку биомов и содержимое сундуков.
	Seed int64
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed: time.Now().UnixNano(),
	}
}
