package database

import (
	"database/sql"
	"fmt"
	"log"
)

// SaveMetric stores a counter value so it survives restarts.
func (s *Store) SaveMetric(metricName string, value float64) error {
	// empty-string labels rather than NULL: NULLs compare distinct in a
	// sqlite primary key, so REPLACE would pile up duplicate rows
	query := `
	INSERT OR REPLACE INTO metrics (metric_name, label_key, label_value, metric_value)
	VALUES (?, '', '', ?);`
	_, err := s.db.Exec(query, metricName, value)
	if err != nil {
		return fmt.Errorf("failed to save metric: %w", err)
	}
	return nil
}

// GetMetric loads a previously saved counter value, defaulting to 0 when the
// metric has never been saved.
func (s *Store) GetMetric(metricName string) (float64, error) {
	var value float64
	query := `
	SELECT metric_value
	FROM metrics
	WHERE metric_name = ? AND label_key = '' AND label_value = '';`
	err := s.db.QueryRow(query, metricName).Scan(&value)
	if err == sql.ErrNoRows {
		log.Printf("Metric %s not found in the database, defaulting to 0", metricName)
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to get metric %s: %w", metricName, err)
	}
	return value, nil
}
