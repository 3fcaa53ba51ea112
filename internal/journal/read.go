package journal

import (
	"context"
	"fmt"

	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/mapper"
)

// GetJudgment retrieves a decision judgment by id.
// Returns sql.ErrNoRows if not found.
//
// The judgment is decoded from its stored document, so the returned
// value is bit-identical to what was recorded, including provenance
// chain and floats.
func (j *Journal) GetJudgment(ctx context.Context, id string) (judgment.Judgment, error) {
	var document string
	err := j.db.QueryRowContext(ctx, `
		SELECT document FROM judgments WHERE judgment_id = ?
	`, id).Scan(&document)
	if err != nil {
		return judgment.Judgment{}, fmt.Errorf("get judgment %s: %w", id, err)
	}
	return judgment.Parse([]byte(document))
}

// GetOutcome retrieves an outcome by its judgment id.
// Returns sql.ErrNoRows if not found.
func (j *Journal) GetOutcome(ctx context.Context, id string) (judgment.Outcome, error) {
	var document string
	err := j.db.QueryRowContext(ctx, `
		SELECT document FROM outcomes WHERE judgment_id = ?
	`, id).Scan(&document)
	if err != nil {
		return judgment.Outcome{}, fmt.Errorf("get outcome %s: %w", id, err)
	}
	return judgment.ParseOutcome([]byte(document))
}

// ListJudgments returns all journaled decision judgments in record
// order (token ASC; UUIDv7 tokens make that chronological).
//
// Returns an empty slice (not nil) if the journal holds no judgments.
func (j *Journal) ListJudgments(ctx context.Context) ([]judgment.Judgment, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT document FROM judgments
		ORDER BY token COLLATE BINARY ASC, judgment_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query judgments: %w", err)
	}
	defer rows.Close()

	judgments := []judgment.Judgment{}
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan judgment: %w", err)
		}
		d, err := judgment.Parse([]byte(document))
		if err != nil {
			return nil, err
		}
		judgments = append(judgments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate judgments: %w", err)
	}

	return judgments, nil
}

// OutcomesFor returns every outcome linked to the given decision id,
// in record order.
//
// Returns an empty slice (not nil) if no outcome links to the
// decision.
func (j *Journal) OutcomesFor(ctx context.Context, decisionID string) ([]judgment.Outcome, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT document FROM outcomes
		WHERE links_to_judgment_id = ?
		ORDER BY token COLLATE BINARY ASC, judgment_id COLLATE BINARY ASC
	`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []judgment.Outcome{}
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o, err := judgment.ParseOutcome([]byte(document))
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return outcomes, nil
}

// GetMapper retrieves a mapper definition by id.
// Returns sql.ErrNoRows if not found.
func (j *Journal) GetMapper(ctx context.Context, id string) (mapper.Mapper, error) {
	var definition string
	err := j.db.QueryRowContext(ctx, `
		SELECT definition FROM mappers WHERE id = ?
	`, id).Scan(&definition)
	if err != nil {
		return nil, fmt.Errorf("get mapper %s: %w", id, err)
	}
	return mapper.ParseMapper([]byte(definition))
}

// LoadMappers returns a registry populated with every journaled
// mapper definition.
func (j *Journal) LoadMappers(ctx context.Context) (*mapper.Registry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT definition FROM mappers
		ORDER BY token COLLATE BINARY ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query mappers: %w", err)
	}
	defer rows.Close()

	registry := mapper.NewRegistry()
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scan mapper: %w", err)
		}
		m, err := mapper.ParseMapper([]byte(definition))
		if err != nil {
			return nil, err
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("load mappers: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappers: %w", err)
	}

	return registry, nil
}

// HasJudgment reports whether a decision with the given id is
// journaled.
func (j *Journal) HasJudgment(ctx context.Context, id string) (bool, error) {
	var count int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM judgments WHERE judgment_id = ?
	`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check judgment: %w", err)
	}
	return count > 0, nil
}
