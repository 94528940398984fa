// Package repomanager vends repositories bound to a connection or a
// transaction, and owns schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/identities"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// DB is the non-transactional handle passed to Users and Identities.
	DB() dbx.DBTX
	// InTx runs fn in a transaction. Repositories obtained from the tx
	// handle see fn's writes; an error from fn rolls them back.
	InTx(ctx context.Context, fn dbx.TxFunc) error
	Users(db dbx.DBTX) users.Repository
	Identities(db dbx.DBTX) identities.Repository
	Ping(ctx context.Context) error
	Close() error
}
