package block

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/pkg/dbmetrics"
	"github.com/lobba/scheduling-service/pkg/psqlbuilder"
)

// blockColumns полный набор колонок таблицы availability_blocks
var blockColumns = []string{
	"id",
	"business_id",
	"start_at",
	"end_at",
	"title",
	"origin",
	"external_event_id",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с блокировками доступности
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateManual создает ручную блокировку доступности
func (r *Repository) CreateManual(ctx context.Context, blk *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_blocks").
		Columns("business_id", "start_at", "end_at", "title", "origin", "active").
		Values(blk.BusinessID, blk.StartAt, blk.EndAt, blk.Title, domain.OriginManual, true).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateManual - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&blk.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateManual - execute insert: %v", ErrExecQuery, err)
	}

	blk.Origin = domain.OriginManual
	blk.Active = true
	blk.CreatedAt = createdAt.Time
	blk.UpdatedAt = updatedAt.Time

	return blk, nil
}

// UpsertExternal создает или обновляет блок, зеркалированный из внешнего календаря
// Ключ идемпотентности - (business_id, external_event_id): повторная
// синхронизация того же события обновляет время и заголовок, а не плодит дубли
// Арбитр конфликта - частичный уникальный индекс (WHERE external_event_id IS
// NOT NULL), поэтому conflict target обязан повторять его предикат
func (r *Repository) UpsertExternal(ctx context.Context, blk *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_blocks").
		Columns("business_id", "start_at", "end_at", "title", "origin", "external_event_id", "active").
		Values(blk.BusinessID, blk.StartAt, blk.EndAt, blk.Title, domain.OriginExternalSync, blk.ExternalEventID, true).
		Suffix(`ON CONFLICT (business_id, external_event_id) WHERE external_event_id IS NOT NULL
			DO UPDATE SET start_at = EXCLUDED.start_at,
				end_at = EXCLUDED.end_at,
				title = EXCLUDED.title,
				active = TRUE,
				updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertExternal - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&blk.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertExternal - execute upsert: %v", ErrExecQuery, err)
	}

	blk.Origin = domain.OriginExternalSync
	blk.Active = true
	blk.CreatedAt = createdAt.Time
	blk.UpdatedAt = updatedAt.Time

	return blk, nil
}

// GetActiveInWindow получает активные блоки бизнеса, пересекающие окно [from, to)
func (r *Repository) GetActiveInWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(blockColumns...).
		From("availability_blocks").
		Where(squirrel.Eq{"business_id": businessID, "active": true}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveInWindow - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveInWindow - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBlocks(rows)
}

// Deactivate мягко удаляет блок (active=false), история сохраняется
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_blocks").
		Set("active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// scanBlocks сканирует результаты запроса в слайс блоков
func (r *Repository) scanBlocks(rows *sql.Rows) ([]*domain.AvailabilityBlock, error) {
	blocks := make([]*domain.AvailabilityBlock, 0)

	for rows.Next() {
		var blk domain.AvailabilityBlock
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&blk.ID,
			&blk.BusinessID,
			&blk.StartAt,
			&blk.EndAt,
			&blk.Title,
			&blk.Origin,
			&blk.ExternalEventID,
			&blk.Active,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBlocks - scan row: %v", ErrScanRow, err)
		}

		blk.CreatedAt = createdAt.Time
		blk.UpdatedAt = updatedAt.Time

		blocks = append(blocks, &blk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBlocks - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}
