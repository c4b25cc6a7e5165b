package integration

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

// integrationColumns полный набор колонок таблицы business_calendar_integrations
var integrationColumns = []string{
	"business_id",
	"calendar_id",
	"sync_enabled",
	"access_token",
	"refresh_token",
	"token_expires_at",
	"channel_id",
	"resource_id",
	"channel_expires_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий привязок бизнесов к внешнему календарю
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория привязок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// UpsertTokens сохраняет OAuth-токены бизнеса
// Вызывается из OAuth callback (создание привязки) и при прозрачном
// обновлении access token перед обращением к календарю
func (r *Repository) UpsertTokens(ctx context.Context, businessID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("business_calendar_integrations").
		Columns("business_id", "calendar_id", "sync_enabled", "access_token", "refresh_token", "token_expires_at").
		Values(businessID, "", false, accessToken, refreshToken, expiresAt).
		Suffix(`ON CONFLICT (business_id)
			DO UPDATE SET access_token = EXCLUDED.access_token,
				refresh_token = CASE WHEN EXCLUDED.refresh_token <> '' THEN EXCLUDED.refresh_token ELSE business_calendar_integrations.refresh_token END,
				token_expires_at = EXCLUDED.token_expires_at,
				updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertTokens - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertTokens - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByBusinessID получает привязку календаря по ID бизнеса
func (r *Repository) GetByBusinessID(ctx context.Context, businessID int64) (*domain.CalendarIntegration, error) {
	return r.getWhere(ctx, "GetByBusinessID", squirrel.Eq{"business_id": businessID})
}

// GetByChannel резолвит webhook-уведомление обратно в привязку бизнеса
func (r *Repository) GetByChannel(ctx context.Context, channelID, resourceID string) (*domain.CalendarIntegration, error) {
	return r.getWhere(ctx, "GetByChannel", squirrel.Eq{
		"channel_id":  channelID,
		"resource_id": resourceID,
	})
}

// ListWithChannels получает все привязки с зарегистрированным webhook-каналом
// Используется ежедневным sweep'ом продления/очистки
func (r *Repository) ListWithChannels(ctx context.Context) ([]*domain.CalendarIntegration, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(integrationColumns...).
		From("business_calendar_integrations").
		Where(squirrel.NotEq{"channel_id": nil}).
		OrderBy("business_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListWithChannels - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithChannels - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	integrations := make([]*domain.CalendarIntegration, 0)
	for rows.Next() {
		integ, err := r.scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListWithChannels - scan row: %v", ErrScanRow, err)
		}
		integrations = append(integrations, integ)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWithChannels - rows error: %v", ErrScanRow, err)
	}

	return integrations, nil
}

// SetCalendar выбирает основной календарь и включает синхронизацию
func (r *Repository) SetCalendar(ctx context.Context, businessID int64, calendarID string) error {
	return r.update(ctx, "SetCalendar", businessID, map[string]interface{}{
		"calendar_id":  calendarID,
		"sync_enabled": true,
	})
}

// SetSyncEnabled включает или выключает синхронизацию
func (r *Repository) SetSyncEnabled(ctx context.Context, businessID int64, enabled bool) error {
	return r.update(ctx, "SetSyncEnabled", businessID, map[string]interface{}{
		"sync_enabled": enabled,
	})
}

// UpdateAccessToken сохраняет обновлённый access token
func (r *Repository) UpdateAccessToken(ctx context.Context, businessID int64, accessToken string, expiresAt time.Time) error {
	return r.update(ctx, "UpdateAccessToken", businessID, map[string]interface{}{
		"access_token":     accessToken,
		"token_expires_at": expiresAt,
	})
}

// SetChannel сохраняет новый webhook-канал
// Провайдер инвалидирует старый канал неявно, поэтому старые значения просто перезаписываются
func (r *Repository) SetChannel(ctx context.Context, businessID int64, channelID, resourceID string, expiresAt time.Time) error {
	return r.update(ctx, "SetChannel", businessID, map[string]interface{}{
		"channel_id":         channelID,
		"resource_id":        resourceID,
		"channel_expires_at": expiresAt,
	})
}

// ClearChannel обнуляет поля webhook-канала
// При disableSync=true дополнительно выключает синхронизацию (принудительная очистка мёртвого канала)
func (r *Repository) ClearChannel(ctx context.Context, businessID int64, disableSync bool) error {
	fields := map[string]interface{}{
		"channel_id":         nil,
		"resource_id":        nil,
		"channel_expires_at": nil,
	}
	if disableSync {
		fields["sync_enabled"] = false
	}
	return r.update(ctx, "ClearChannel", businessID, fields)
}

// update общий UPDATE по business_id
func (r *Repository) update(ctx context.Context, method string, businessID int64, fields map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("business_calendar_integrations").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"business_id": businessID})
	for column, value := range fields {
		updateBuilder = updateBuilder.Set(column, value)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrIntegrationNotFound
	}

	return nil
}

// getWhere общий SELECT одной привязки по условию
func (r *Repository) getWhere(ctx context.Context, method string, where squirrel.Eq) (*domain.CalendarIntegration, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(integrationColumns...).
		From("business_calendar_integrations").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	integ, err := r.scanIntegration(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrIntegrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan integration: %v", ErrScanRow, method, err)
	}

	return integ, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanIntegration сканирует одну строку в привязку
func (r *Repository) scanIntegration(row rowScanner) (*domain.CalendarIntegration, error) {
	var integ domain.CalendarIntegration
	var tokenExpiresAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&integ.BusinessID,
		&integ.CalendarID,
		&integ.SyncEnabled,
		&integ.AccessToken,
		&integ.RefreshToken,
		&tokenExpiresAt,
		&integ.ChannelID,
		&integ.ResourceID,
		&integ.ChannelExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	integ.TokenExpiresAt = tokenExpiresAt.Time
	integ.CreatedAt = createdAt.Time
	integ.UpdatedAt = updatedAt.Time

	return &integ, nil
}
