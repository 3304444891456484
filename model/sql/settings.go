package sql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/jmoiron/sqlx"
)

// settingsService reads the plugin settings on every call, nothing is cached
// so changes from the admin page apply immediately.
type settingsService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewSettingsService(db *sqlx.DB) *settingsService {
	return &settingsService{
		DB:  db,
		log: logger.New("settingsService"),
	}
}

func (db *settingsService) GetRaw(ctx context.Context) (map[string]string, error) {
	const query = `SELECT name, value FROM plugin_settings WHERE hash = ?`

	var rows []model.PluginSetting
	if err := db.SelectContext(ctx, &rows, query, model.SettingsHash); err != nil {
		return nil, err
	}

	raw := make(map[string]string, len(rows))
	for _, row := range rows {
		raw[row.Name] = row.Value
	}
	return raw, nil
}

func (db *settingsService) Get(ctx context.Context) (model.Settings, error) {
	raw, err := db.GetRaw(ctx)
	if err != nil {
		return model.DefaultSettings(), err
	}

	settings, err := model.ParseSettings(raw)
	if err != nil {
		db.log.Warn().
			Err(err).
			Msg("Ignoring malformed settings")
	}

	return settings, nil
}

func (db *settingsService) Set(ctx context.Context, values map[string]string) error {
	const query = `INSERT INTO plugin_settings (hash, name, value) VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE value = VALUES(value)`

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func(tx *sqlx.Tx) {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			db.log.Err(err).Msg("failed to rollback transaction")
		}
	}(tx)

	for name, value := range values {
		if _, err := tx.ExecContext(ctx, query, model.SettingsHash, name, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}
