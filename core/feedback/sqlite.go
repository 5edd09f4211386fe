package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/naru-ai/naru/core/korean"
)

// DefaultStorePath is the default location for the feedback database.
const DefaultStorePath = ".naru/feedback.db"

// positiveScoreMin is the satisfaction score from which a signal counts as a
// positive example for recommendations.
const positiveScoreMin = 0.7

// SQLiteLearner persists satisfaction signals and derives recommendations and
// score adjustments from them.
type SQLiteLearner struct {
	db         *sql.DB
	normalizer *korean.Normalizer
}

// SQLiteLearnerConfig configures a SQLiteLearner.
type SQLiteLearnerConfig struct {
	// Path to the SQLite database file; parent directories are created.
	Path string
}

// NewSQLiteLearner opens the database and initializes the schema.
func NewSQLiteLearner(cfg SQLiteLearnerConfig) (*SQLiteLearner, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultStorePath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create feedback directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open feedback database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS feedback_signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		query TEXT NOT NULL,
		score REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback_signals(user_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_user_agent ON feedback_signals(user_id, agent_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize feedback schema: %w", err)
	}

	return &SQLiteLearner{db: db, normalizer: korean.NewNormalizer()}, nil
}

// Close releases the database handle.
func (l *SQLiteLearner) Close() error {
	return l.db.Close()
}

// Record appends one satisfaction signal. Score is expected in [0,1].
func (l *SQLiteLearner) Record(ctx context.Context, userID, agentID, query string, score float64) error {
	if userID == "" || agentID == "" {
		return fmt.Errorf("user id and agent id are required")
	}
	if score < 0 || score > 1 {
		return fmt.Errorf("score %v outside [0,1]", score)
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO feedback_signals (user_id, agent_id, query, score, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, agentID, query, score, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}

// Recommend implements Learner. It compares the query's normalized tokens
// against the user's recent positive queries and suggests the agent behind
// the best-overlapping one. Confidence is the token overlap ratio, so only a
// near-repeat of a past query clears the adjuster's acceptance bar.
func (l *SQLiteLearner) Recommend(ctx context.Context, query, userID string, topK int) (*Recommendation, error) {
	if userID == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}

	_, tokens := l.normalizer.Normalize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT agent_id, query FROM feedback_signals
		 WHERE user_id = ? AND score >= ?
		 ORDER BY created_at DESC LIMIT ?`,
		userID, positiveScoreMin, topK*10)
	if err != nil {
		return nil, fmt.Errorf("query feedback history: %w", err)
	}
	defer rows.Close()

	var bestAgent, bestQuery string
	var bestOverlap float64
	for rows.Next() {
		var agentID, pastQuery string
		if err := rows.Scan(&agentID, &pastQuery); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		overlap := l.tokenOverlap(tokens, pastQuery)
		if overlap > bestOverlap {
			bestAgent, bestQuery, bestOverlap = agentID, pastQuery, overlap
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback history: %w", err)
	}

	if bestAgent == "" || bestOverlap == 0 {
		return nil, nil
	}
	return &Recommendation{
		AgentID:    bestAgent,
		Confidence: bestOverlap,
		Reason:     "similar to: " + bestQuery,
	}, nil
}

// AdjustScore implements Learner. The base confidence is nudged by up to 10%
// either way around the user's mean satisfaction with the agent; a user with
// no history leaves the score unchanged.
func (l *SQLiteLearner) AdjustScore(ctx context.Context, userID, agentID string, base float64) (float64, error) {
	if userID == "" {
		return base, nil
	}

	var mean sql.NullFloat64
	err := l.db.QueryRowContext(ctx,
		`SELECT AVG(score) FROM feedback_signals WHERE user_id = ? AND agent_id = ?`,
		userID, agentID).Scan(&mean)
	if err != nil {
		return base, fmt.Errorf("query satisfaction mean: %w", err)
	}
	if !mean.Valid {
		return base, nil
	}

	// mean 0.5 is neutral; 1.0 boosts 10%, 0.0 cuts 10%.
	return base * (1 + (mean.Float64-0.5)*0.2), nil
}

// tokenOverlap is the fraction of the query's tokens (synonyms included) that
// appear in the past query.
func (l *SQLiteLearner) tokenOverlap(tokens []string, pastQuery string) float64 {
	_, pastTokens := l.normalizer.Normalize(pastQuery)
	if len(pastTokens) == 0 {
		return 0
	}

	past := make(map[string]bool, len(pastTokens))
	for _, tok := range pastTokens {
		past[korean.Canonical(tok)] = true
	}

	matched := 0
	for _, tok := range tokens {
		if past[korean.Canonical(tok)] {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
