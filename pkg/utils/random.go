package utils

import "hash/fnv"

// StringToSeed детерминированно превращает строку (ключ игрока) в сид.
// Один и тот же ключ всегда дает один и тот же сид, поэтому
// раздача стартовых характеристик воспроизводима между подключениями.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
