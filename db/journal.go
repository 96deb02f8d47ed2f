package db

import (
	"database/sql"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

const DefaultJournalBuffer = 64

// Journal records scheduler events without blocking the caller. A single
// writer goroutine owns all inserts.
type Journal struct {
	db     *sql.DB
	events chan model.Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewJournal(db *sql.DB, buffer int) *Journal {
	if buffer <= 0 {
		buffer = DefaultJournalBuffer
	}
	j := &Journal{
		db:     db,
		events: make(chan model.Event, buffer),
		done:   make(chan struct{}),
	}
	go j.writer()
	return j
}

// Record enqueues e. When the buffer is full the event is dropped.
func (j *Journal) Record(e model.Event) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}

	select {
	case j.events <- e:
	default:
		log.Warn().Str("kind", string(e.Kind)).Msg("Event journal full, dropping event")
	}
}

// Close flushes queued events and stops the writer.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.events)
	j.mu.Unlock()

	<-j.done
}

func (j *Journal) writer() {
	defer close(j.done)

	for e := range j.events {
		batch := []model.Event{e}
	drain:
		for {
			select {
			case next, ok := <-j.events:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}

		if err := InsertEvents(j.db, batch); err != nil {
			log.Error().Err(err).Int("events", len(batch)).Msg("Failed to write events to journal")
			continue
		}
		log.Debug().Int("events", len(batch)).Msg("Events written to journal")
	}
}
