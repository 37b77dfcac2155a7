package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	cache  = make(map[string]any)
	envDot sync.Once
)

// Load parses environment variables into cfg based on its `env` struct
// tags. The first call loads a .env file if one exists. Each distinct
// configuration type is parsed at most once per process; later calls
// return the cached value.
func Load[T any](cfg *T) error {
	envDot.Do(func() {
		// A missing .env file is fine; real environments set vars directly.
		_ = godotenv.Load()
	})
	if cfg == nil {
		return ErrNilPointer
	}

	key := typeName[T]()

	mu.RLock()
	if cached, ok := cache[key]; ok {
		*cfg = cached.(T)
		mu.RUnlock()
		return nil
	}
	mu.RUnlock()

	parsed, err := env.ParseAs[T]()
	if err != nil {
		return errors.Join(ErrParse, err)
	}

	mu.Lock()
	cache[key] = parsed
	mu.Unlock()

	*cfg = parsed
	return nil
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return fmt.Sprintf("%s.%s", t.PkgPath(), t.Name())
}
