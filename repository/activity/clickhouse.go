package activity

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/MANUEL666GAMER/Biblioteca/model"
)

type ClickHouseJournal struct {
	conn clickhouse.Conn
}

type ClickHouseOptions struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	UseTLS   bool
}

// NewClickHouseJournal opens a native-protocol connection and pings it.
func NewClickHouseJournal(ctx context.Context, o ClickHouseOptions) (*ClickHouseJournal, error) {
	options := &clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", o.Host, o.Port)},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.User,
			Password: o.Password,
		},
	}
	if o.UseTLS {
		options.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &ClickHouseJournal{conn: conn}, nil
}

// Initialize creates the events table when missing.
func (j *ClickHouseJournal) Initialize(ctx context.Context) error {
	err := j.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS loan_events (
			at       DateTime64(3, 'UTC'),
			loan_id  Int64,
			book_id  Int64,
			user_id  Int64,
			actor_id Int64,
			action   LowCardinality(String),
			state    LowCardinality(String)
		) ENGINE = MergeTree()
		ORDER BY (at, loan_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to create loan_events: %w", err)
	}
	return nil
}

func (j *ClickHouseJournal) Record(ctx context.Context, ev model.LoanEvent) error {
	err := j.conn.Exec(ctx, `INSERT INTO loan_events (at, loan_id, book_id, user_id, actor_id, action, state) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.At.UTC(), ev.LoanID, ev.BookID, ev.UserID, ev.ActorID, string(ev.Action), string(ev.State))
	if err != nil {
		return fmt.Errorf("failed to record loan event: %w", err)
	}
	return nil
}

func (j *ClickHouseJournal) Recent(ctx context.Context, limit int) ([]model.LoanEvent, error) {
	rows, err := j.conn.Query(ctx, `
		SELECT at, loan_id, book_id, user_id, actor_id, action, state
		FROM loan_events
		ORDER BY at DESC, loan_id DESC
		LIMIT ?`, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get recent loan events: %w", err)
	}
	defer rows.Close()

	events := []model.LoanEvent{}
	for rows.Next() {
		var (
			ev            model.LoanEvent
			action, state string
		)
		if err := rows.Scan(&ev.At, &ev.LoanID, &ev.BookID, &ev.UserID, &ev.ActorID, &action, &state); err != nil {
			return nil, fmt.Errorf("failed to scan loan event: %w", err)
		}
		ev.Action = model.LoanAction(action)
		ev.State = model.LoanState(state)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (j *ClickHouseJournal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}
