package usage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// daysPerMonth is the average calendar month length used by monthly
// estimates.
const daysPerMonth = 30.44

// Record is one immutable ledger row. TotalTokens is always the sum of
// prompt and completion tokens; EstimatedCost is computed from the price
// table at record time and never recomputed.
type Record struct {
	ID               int64          `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Operation        string         `json:"operation"`
	Model            string         `json:"model"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	ElapsedSeconds   float64        `json:"elapsed_seconds"`
	EstimatedCost    float64        `json:"estimated_cost"`
	EntryDate        string         `json:"entry_date,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Bucket aggregates cost, tokens, and request count for one grouping key.
type Bucket struct {
	Cost     float64
	Tokens   int
	Requests int
}

// Summary aggregates a date range of ledger rows. An empty range yields the
// zero Summary, not an error.
type Summary struct {
	TotalCost     float64
	TotalTokens   int
	TotalRequests int
	ByOperation   map[string]Bucket
	ByDay         map[string]Bucket
}

// DailyCost is one point in a dense cost series.
type DailyCost struct {
	Date string
	Cost float64
}

// Ledger is an append-only store of usage records backed by an embedded
// SQLite database in WAL mode. Multiple processes (interactive CLI plus a
// background job) may append concurrently; each Record call is one atomic
// insert and readers never observe partial writes.
type Ledger struct {
	db     *sql.DB
	prices PriceTable
}

// Open opens (or creates) the ledger database at path. A nil prices table
// uses the defaults.
func Open(path string, prices PriceTable) (*Ledger, error) {
	if prices == nil {
		prices = DefaultPrices()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("usage: create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("usage: open ledger: %w", err)
	}
	l := &Ledger{db: db, prices: prices}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("usage: migrate: %w", err)
	}
	return l, nil
}

func (l *Ledger) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS llm_usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			operation TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL,
			completion_tokens INTEGER NOT NULL,
			total_tokens INTEGER NOT NULL,
			elapsed_seconds REAL NOT NULL,
			estimated_cost REAL NOT NULL,
			entry_date TEXT,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON llm_usage(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_operation ON llm_usage(operation)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_entry_date ON llm_usage(entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_operation_timestamp ON llm_usage(operation, timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Cost computes the estimated cost of a call using the ledger's price
// table. Pure; no row is written.
func (l *Ledger) Cost(model string, promptTokens, completionTokens int) float64 {
	return l.prices.Cost(model, promptTokens, completionTokens)
}

// Prices returns the price table this ledger charges against.
func (l *Ledger) Prices() PriceTable {
	return l.prices
}

// Record appends one usage row. The total token count and estimated cost
// are derived here so every row satisfies the ledger invariants.
func (l *Ledger) Record(operation, model string, promptTokens, completionTokens int, elapsedSeconds float64, entryDate string, metadata map[string]any) error {
	totalTokens := promptTokens + completionTokens
	cost := l.prices.Cost(model, promptTokens, completionTokens)

	var metaJSON any
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("usage: marshal metadata: %w", err)
		}
		metaJSON = string(b)
	}

	var entry any
	if entryDate != "" {
		entry = entryDate
	}

	_, err := l.db.Exec(
		`INSERT INTO llm_usage (
			timestamp, operation, model, prompt_tokens, completion_tokens,
			total_tokens, elapsed_seconds, estimated_cost, entry_date, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		operation, model, promptTokens, completionTokens,
		totalTokens, elapsedSeconds, cost, entry, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("usage: record %s: %w", operation, err)
	}
	return nil
}

// Summary aggregates the last `days` days, today inclusive.
func (l *Ledger) Summary(days int) (Summary, error) {
	end := today()
	start := end.AddDate(0, 0, -days)
	return l.SummaryRange(start, end)
}

// MonthlySummary aggregates one calendar month.
func (l *Ledger) MonthlySummary(year int, month time.Month) (Summary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return l.SummaryRange(start, end)
}

// SummaryRange aggregates rows whose timestamp date falls within
// [start, end] inclusive.
func (l *Ledger) SummaryRange(start, end time.Time) (Summary, error) {
	rows, err := l.db.Query(
		`SELECT operation, total_tokens, estimated_cost, substr(timestamp, 1, 10) AS day
		 FROM llm_usage
		 WHERE substr(timestamp, 1, 10) BETWEEN ? AND ?
		 ORDER BY timestamp DESC`,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return Summary{}, fmt.Errorf("usage: summary query: %w", err)
	}
	defer rows.Close()

	summary := Summary{
		ByOperation: map[string]Bucket{},
		ByDay:       map[string]Bucket{},
	}
	for rows.Next() {
		var operation, day string
		var tokens int
		var cost float64
		if err := rows.Scan(&operation, &tokens, &cost, &day); err != nil {
			return Summary{}, fmt.Errorf("usage: scan summary row: %w", err)
		}
		summary.TotalCost += cost
		summary.TotalTokens += tokens
		summary.TotalRequests++

		op := summary.ByOperation[operation]
		op.Cost += cost
		op.Tokens += tokens
		op.Requests++
		summary.ByOperation[operation] = op

		d := summary.ByDay[day]
		d.Cost += cost
		d.Tokens += tokens
		d.Requests++
		summary.ByDay[day] = d
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("usage: summary rows: %w", err)
	}
	return summary, nil
}

// Trends returns a dense daily cost series for the last `days` calendar
// days ending today: exactly one point per day, zero-filled where no usage
// was recorded.
func (l *Ledger) Trends(days int) ([]DailyCost, error) {
	summary, err := l.Summary(days)
	if err != nil {
		return nil, err
	}

	end := today()
	start := end.AddDate(0, 0, -(days - 1))

	trends := make([]DailyCost, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format("2006-01-02")
		trends = append(trends, DailyCost{Date: day, Cost: summary.ByDay[day].Cost})
	}
	return trends, nil
}

// EstimateMonthly projects a monthly cost from the last sampleDays of
// usage. Zero usage in the sample window yields zero.
func (l *Ledger) EstimateMonthly(sampleDays int) (float64, error) {
	summary, err := l.Summary(sampleDays)
	if err != nil {
		return 0, err
	}
	if summary.TotalRequests == 0 {
		return 0, nil
	}
	return summary.TotalCost / float64(sampleDays) * daysPerMonth, nil
}

// Export returns the raw records in [start, end] inclusive, newest first,
// suitable for JSON serialization.
func (l *Ledger) Export(start, end time.Time) ([]Record, error) {
	rows, err := l.db.Query(
		`SELECT id, timestamp, operation, model, prompt_tokens, completion_tokens,
			total_tokens, elapsed_seconds, estimated_cost, entry_date, metadata
		 FROM llm_usage
		 WHERE substr(timestamp, 1, 10) BETWEEN ? AND ?
		 ORDER BY timestamp DESC`,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("usage: export query: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var ts string
		var entryDate, metaJSON sql.NullString
		if err := rows.Scan(
			&r.ID, &ts, &r.Operation, &r.Model, &r.PromptTokens, &r.CompletionTokens,
			&r.TotalTokens, &r.ElapsedSeconds, &r.EstimatedCost, &entryDate, &metaJSON,
		); err != nil {
			return nil, fmt.Errorf("usage: scan export row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.Timestamp = t
		}
		r.EntryDate = entryDate.String
		if metaJSON.Valid {
			_ = json.Unmarshal([]byte(metaJSON.String), &r.Metadata)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage: export rows: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
