package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/application/usecase"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// Ensure TxRunner implements tenant.TxRunner and usecase.VentaTxRunner.
var _ tenant.TxRunner = (*TxRunner)(nil)
var _ usecase.VentaTxRunner = (*TxRunner)(nil)

// Reintentos ante fallas de serialización antes de rendirse con ErrTxConflict.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// El store documental transaccional del diseño original reintentaba el cuerpo
// ante conflictos de escritura; aquí el equivalente es un lazo acotado que
// reintenta solo fallas de serialización/deadlock (el bloqueo de fila con
// SELECT FOR UPDATE hace el resto de la serialización).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// El cuerpo debe ser función pura de sus lecturas transaccionales: puede re-ejecutarse.
func (r *TxRunner) Run(ctx context.Context, fn func(
	empresaRepo repository.EmpresaRepository,
	dispositivoRepo repository.DispositivoRepository,
	usuarioRepo repository.UsuarioRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(
			NewEmpresaRepository(tx),
			NewDispositivoRepository(tx),
			NewUsuarioRepository(tx),
		)
	})
}

// RunVenta inicia una transacción con repos de catálogo y ventas (para RegistrarVenta).
func (r *TxRunner) RunVenta(ctx context.Context, fn func(
	productoRepo repository.ProductoRepository,
	ventaRepo repository.VentaRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(
			NewProductoRepository(tx),
			NewVentaRepository(tx),
		)
	})
}

func (r *TxRunner) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrTxConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
