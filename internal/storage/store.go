package storage

import (
	"context"
	"errors"
)

// Keys of the persisted documents.
const (
	KeyUser        = "user"
	KeyResidents   = "residents"
	KeyAdminLists  = "adminLists"
	KeyPayments    = "iuran"
	KeyRateConfig  = "iuranConfig"
	KeyExpenses    = "pengeluaran"
	KeyOtherIncome = "pemasukanLain"
)

// Keys lists every persisted key.
var Keys = []string{KeyUser, KeyResidents, KeyAdminLists, KeyPayments, KeyRateConfig, KeyExpenses, KeyOtherIncome}

var ErrClosed = errors.New("store closed")

// Store is a flat key-value document store. Get reports found=false for a
// key that was never written.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Pinger is implemented by stores that can check their backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
