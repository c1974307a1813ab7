package store

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mathpeer/mathpeer/internal/domain"
)

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "error", err)
	}
}

func marshalTurns(turns []domain.Turn) (string, error) {
	if turns == nil {
		turns = []domain.Turn{}
	}
	buf, err := json.Marshal(turns)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func unmarshalTurns(raw string, turns *[]domain.Turn) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), turns)
}
