package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
)

var _ billing.FolioTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunFolio inicia una transacción, ejecuta fn con el repositorio de folios
// atado a la tx y hace Commit o Rollback. El SELECT ... FOR UPDATE del
// repositorio mantiene el lock de fila hasta el final de la transacción.
func (r *TxRunner) RunFolio(ctx context.Context, fn func(folioRepo repository.FolioRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewFolioRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
