package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const instrumentDDL = `
CREATE TABLE IF NOT EXISTS @s.%s (
	code          VARCHAR(20) PRIMARY KEY,
	name          VARCHAR(200) NOT NULL,
	market_type   VARCHAR(20) NOT NULL DEFAULT '',
	security_type VARCHAR(20) NOT NULL DEFAULT '',
	manager       VARCHAR(100) NOT NULL DEFAULT '',
	last_update   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const priceDDL = `
CREATE TABLE IF NOT EXISTS @s.%[1]s (
	code        VARCHAR(20) NOT NULL,
	date        DATE NOT NULL,
	open        DOUBLE PRECISION NOT NULL DEFAULT 0,
	high        DOUBLE PRECISION NOT NULL DEFAULT 0,
	low         DOUBLE PRECISION NOT NULL DEFAULT 0,
	close       DOUBLE PRECISION NOT NULL DEFAULT 0,
	diff        DOUBLE PRECISION NOT NULL DEFAULT 0,
	volume      BIGINT NOT NULL DEFAULT 0,
	last_update TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (code, date)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_date ON @s.%[1]s (date);
CREATE INDEX IF NOT EXISTS idx_%[1]s_last_update ON @s.%[1]s (last_update)`

var baseDDL = []string{
	`CREATE TABLE IF NOT EXISTS @s.daily_price_indicator (
		code          VARCHAR(20) NOT NULL,
		date          DATE NOT NULL,
		close         NUMERIC(18,4) NOT NULL,
		change_amount NUMERIC(18,4) NOT NULL DEFAULT 0,
		change_rate   NUMERIC(10,4) NOT NULL DEFAULT 0,
		last_update   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (code, date)
	)`,
	`CREATE TABLE IF NOT EXISTS @s.strategy_result (
		id            UUID PRIMARY KEY,
		strategy_name VARCHAR(100) NOT NULL,
		signal_date   DATE NOT NULL,
		signal_type   VARCHAR(100) NOT NULL,
		total_data    INT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_strategy_result_name_date ON @s.strategy_result (strategy_name, signal_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_strategy_result_created_at ON @s.strategy_result (created_at)`,
	`CREATE TABLE IF NOT EXISTS @s.strategy_detail (
		result_id     UUID NOT NULL REFERENCES @s.strategy_result (id) ON DELETE CASCADE,
		signal_date   DATE NOT NULL,
		code          VARCHAR(20) NOT NULL,
		name          VARCHAR(200) NOT NULL DEFAULT '',
		action        VARCHAR(100) NOT NULL,
		price         DOUBLE PRECISION NOT NULL DEFAULT 0,
		prev_close    DOUBLE PRECISION NOT NULL DEFAULT 0,
		diff          DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume        BIGINT NOT NULL DEFAULT 0,
		special_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		metric_name   VARCHAR(50) NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (signal_date, code, action)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_strategy_detail_result_id ON @s.strategy_detail (result_id)`,
	`CREATE INDEX IF NOT EXISTS idx_strategy_detail_created_at ON @s.strategy_detail (created_at)`,
	`CREATE TABLE IF NOT EXISTS @s.strategy_signal_state (
		strategy_name    VARCHAR(100) NOT NULL,
		code             VARCHAR(20) NOT NULL,
		active           BOOLEAN NOT NULL,
		evaluated_date   DATE NOT NULL,
		last_signal_date DATE,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (strategy_name, code)
	)`,
	`CREATE TABLE IF NOT EXISTS @s.kodex_etf_summary (
		etf_id     VARCHAR(20) NOT NULL,
		base_date  VARCHAR(10) NOT NULL,
		etf_name   VARCHAR(200) NOT NULL DEFAULT '',
		irp_yn     VARCHAR(1) NOT NULL DEFAULT '',
		total_cnt  INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (etf_id, base_date)
	)`,
	`CREATE TABLE IF NOT EXISTS @s.kodex_etf_holdings (
		etf_id        VARCHAR(20) NOT NULL,
		base_date     VARCHAR(10) NOT NULL,
		stock_code    VARCHAR(40) NOT NULL,
		stock_name    VARCHAR(200) NOT NULL DEFAULT '',
		holding_qty   NUMERIC(24,4),
		current_price BIGINT,
		eval_amount   BIGINT,
		weight_ratio  NUMERIC(10,4),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (etf_id, base_date, stock_code)
	)`,
	`CREATE TABLE IF NOT EXISTS @s.fetch_logs (
		id               SERIAL PRIMARY KEY,
		job_type         VARCHAR(30) NOT NULL,
		source           VARCHAR(30) NOT NULL,
		target_table     VARCHAR(50) NOT NULL,
		records_fetched  INT NOT NULL DEFAULT 0,
		records_inserted INT NOT NULL DEFAULT 0,
		codes_processed  INT NOT NULL DEFAULT 0,
		codes_failed     INT NOT NULL DEFAULT 0,
		status           VARCHAR(20) NOT NULL,
		error_message    TEXT,
		started_at       TIMESTAMPTZ NOT NULL,
		finished_at      TIMESTAMPTZ,
		duration_ms      INT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Statements returns the DDL for schema in execution order.
func Statements(schema string, instrumentTables, priceTables []string) []string {
	ident := pgx.Identifier{schema}.Sanitize()

	stmts := []string{"CREATE SCHEMA IF NOT EXISTS " + ident}
	for _, t := range instrumentTables {
		stmts = append(stmts, fmt.Sprintf(instrumentDDL, t))
	}
	for _, t := range priceTables {
		stmts = append(stmts, strings.Split(fmt.Sprintf(priceDDL, t), ";")...)
	}
	stmts = append(stmts, baseDDL...)

	for i, s := range stmts {
		stmts[i] = strings.TrimSpace(strings.ReplaceAll(s, "@s.", ident+"."))
	}
	return stmts
}

// Migrate creates the schema, tables and indexes when missing
func (p *Pool) Migrate(ctx context.Context, instrumentTables, priceTables []string) error {
	if p.Schema == "" {
		return fmt.Errorf("migrate: database schema is not configured")
	}

	stmts := Statements(p.Schema, instrumentTables, priceTables)

	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}

	log.Info().Str("schema", p.Schema).Int("statements", len(stmts)).Msg("Migration completed")
	return nil
}
