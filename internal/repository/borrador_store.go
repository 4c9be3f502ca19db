package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arelyz/internal/calculo"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const borradorPrefix = "arqueo:borrador:"

// Borrador is an in-flight reconciliation. It lives in Redis, not in the
// relational store, and is never written by the close transaction.
type Borrador struct {
	ID              uuid.UUID        `json:"id"`
	Estado          string           `json:"estado"`
	Operador        string           `json:"operador"`
	Periodo         calculo.Periodo  `json:"periodo"`
	Totales         calculo.Totales  `json:"totales"`
	EfectivoContado *decimal.Decimal `json:"efectivo_contado"`
	// Incierto marks a close whose outcome is unknown (timeout); the draft
	// can no longer be accepted, only cancelled and reviewed by hand.
	Incierto      bool       `json:"incierto"`
	ArqueoID      *uuid.UUID `json:"arqueo_id,omitempty"`
	UltimoError   string     `json:"ultimo_error,omitempty"`
	CreadoEn      time.Time  `json:"creado_en"`
	ActualizadoEn time.Time  `json:"actualizado_en"`
}

// ErrBorradorInexistente is returned when a draft expired or never existed.
var ErrBorradorInexistente = errors.New("borrador inexistente")

// BorradorStore keeps in-flight arqueo drafts.
type BorradorStore interface {
	Save(ctx context.Context, b *Borrador) error
	Get(ctx context.Context, id uuid.UUID) (*Borrador, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Reservar takes an exclusive claim on a draft for ttl; false when someone
	// else holds it.
	Reservar(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error)
	Liberar(ctx context.Context, id uuid.UUID) error
}

type redisBorradorStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBorradorStore stores drafts as JSON strings with a sliding TTL.
func NewBorradorStore(rdb *redis.Client, ttl time.Duration) BorradorStore {
	return &redisBorradorStore{rdb: rdb, ttl: ttl}
}

func (s *redisBorradorStore) Save(ctx context.Context, b *Borrador) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("borrador: marshal: %w", err)
	}
	return s.rdb.Set(ctx, borradorPrefix+b.ID.String(), data, s.ttl).Err()
}

func (s *redisBorradorStore) Get(ctx context.Context, id uuid.UUID) (*Borrador, error) {
	raw, err := s.rdb.Get(ctx, borradorPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBorradorInexistente
	}
	if err != nil {
		return nil, err
	}
	var b Borrador
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("borrador: unmarshal: %w", err)
	}
	return &b, nil
}

func (s *redisBorradorStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, borradorPrefix+id.String()).Err()
}

func (s *redisBorradorStore) Reservar(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, borradorPrefix+id.String()+":lock", 1, ttl).Result()
}

func (s *redisBorradorStore) Liberar(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, borradorPrefix+id.String()+":lock").Err()
}
