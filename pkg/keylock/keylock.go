// Package keylock provee exclusión mutua por clave (un mutex por código de producto).
// Operaciones sobre claves distintas nunca se bloquean entre sí.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker mapa de mutex con conteo de referencias; las entradas sin uso se eliminan.
type Locker struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// New construye un Locker vacío.
func New() *Locker {
	return &Locker{entries: make(map[int64]*entry)}
}

// Lock bloquea la clave hasta obtenerla y devuelve la función que la libera.
// La función de liberación es idempotente.
func (l *Locker) Lock(key int64) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len número de claves con al menos un poseedor o en espera.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
