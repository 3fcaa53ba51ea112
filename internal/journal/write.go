package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/mapper"
)

// RecordJudgment inserts a decision judgment keyed by its judgment id.
// Returns the row's record token and whether a new row was inserted.
//
// Uses ON CONFLICT(judgment_id) DO NOTHING for idempotency: recording
// a judgment that is already journaled returns the existing token and
// inserted=false. Content addressing makes this safe - two judgments
// with the same id are the same judgment.
//
// The judgment must validate and must already carry an id (see
// identity.EnsureJudgmentID); the journal never assigns ids.
func (j *Journal) RecordJudgment(ctx context.Context, d judgment.Judgment) (token string, inserted bool, err error) {
	if err := d.Validate(); err != nil {
		return "", false, fmt.Errorf("record judgment: %w", err)
	}
	id := d.JudgmentID()
	if id == "" {
		return "", false, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "judgment_id",
			Message: "judgment has no id; assign one before journaling",
		}
	}

	document, err := json.Marshal(d)
	if err != nil {
		return "", false, fmt.Errorf("record judgment: marshal: %w", err)
	}

	token, inserted, err = j.insertOrToken(ctx, insertSpec{
		insert: `
			INSERT INTO judgments
			(judgment_id, t, i, f, document, token, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(judgment_id) DO NOTHING
		`,
		insertArgs: func(token, at string) []any {
			return []any{id, d.T, d.I, d.F, string(document), token, at}
		},
		tokenQuery: `SELECT token FROM judgments WHERE judgment_id = ?`,
		tokenArgs:  []any{id},
	})
	if err != nil {
		return "", false, fmt.Errorf("record judgment: %w", err)
	}
	if inserted {
		j.log.Debug("judgment recorded",
			zap.String("judgment_id", id),
			zap.String("token", token))
	}
	return token, inserted, nil
}

// RecordOutcome inserts an observed outcome keyed by its judgment id.
// Returns the row's record token and whether a new row was inserted.
//
// The linked decision is not required to exist: the link is a weak
// reference resolved by the calibration read path, not a foreign key.
// An oracle may report an outcome before the decision reaches this
// journal.
func (j *Journal) RecordOutcome(ctx context.Context, o judgment.Outcome) (token string, inserted bool, err error) {
	if err := o.Validate(); err != nil {
		return "", false, fmt.Errorf("record outcome: %w", err)
	}
	id := o.JudgmentID()
	if id == "" {
		return "", false, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "judgment_id",
			Message: "outcome has no id; assign one before journaling",
		}
	}

	document, err := json.Marshal(o)
	if err != nil {
		return "", false, fmt.Errorf("record outcome: marshal: %w", err)
	}

	token, inserted, err = j.insertOrToken(ctx, insertSpec{
		insert: `
			INSERT INTO outcomes
			(judgment_id, links_to_judgment_id, outcome_type, oracle_source, t, i, f, document, token, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(judgment_id) DO NOTHING
		`,
		insertArgs: func(token, at string) []any {
			return []any{
				id, o.LinksToJudgmentID, string(o.OutcomeType), o.OracleSource,
				o.T, o.I, o.F, string(document), token, at,
			}
		},
		tokenQuery: `SELECT token FROM outcomes WHERE judgment_id = ?`,
		tokenArgs:  []any{id},
	})
	if err != nil {
		return "", false, fmt.Errorf("record outcome: %w", err)
	}
	if inserted {
		j.log.Debug("outcome recorded",
			zap.String("judgment_id", id),
			zap.String("links_to", o.LinksToJudgmentID),
			zap.String("token", token))
	}
	return token, inserted, nil
}

// RecordMapper inserts a mapper definition keyed by its id. Returns
// the row's record token and whether a new row was inserted.
//
// Idempotency is by id: re-recording an id that is already journaled
// is a no-op even when the definition differs. First definition wins;
// changing a mapper means journaling it under a new id, keeping old
// provenance source_ids resolvable.
func (j *Journal) RecordMapper(ctx context.Context, m mapper.Mapper) (token string, inserted bool, err error) {
	if errs := mapper.Validate(m); len(errs) > 0 {
		return "", false, fmt.Errorf("record mapper: %w", errs[0])
	}

	definition, err := mapper.MarshalMapper(m)
	if err != nil {
		return "", false, fmt.Errorf("record mapper: %w", err)
	}

	token, inserted, err = j.insertOrToken(ctx, insertSpec{
		insert: `
			INSERT INTO mappers
			(id, type, definition, token, recorded_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
		insertArgs: func(token, at string) []any {
			return []any{m.MapperID(), string(m.MapperType()), string(definition), token, at}
		},
		tokenQuery: `SELECT token FROM mappers WHERE id = ?`,
		tokenArgs:  []any{m.MapperID()},
	})
	if err != nil {
		return "", false, fmt.Errorf("record mapper: %w", err)
	}
	if inserted {
		j.log.Debug("mapper recorded",
			zap.String("id", m.MapperID()),
			zap.String("type", string(m.MapperType())),
			zap.String("token", token))
	}
	return token, inserted, nil
}

// insertSpec describes one idempotent insert: the INSERT ... ON
// CONFLICT DO NOTHING statement and the query that fetches the
// existing row's token on conflict.
type insertSpec struct {
	insert     string
	insertArgs func(token, recordedAt string) []any
	tokenQuery string
	tokenArgs  []any
}

// insertOrToken runs an idempotent insert in a transaction. A fresh
// token is drawn for every attempt; on conflict it is discarded and
// the existing row's token is returned instead.
func (j *Journal) insertOrToken(ctx context.Context, spec insertSpec) (token string, inserted bool, err error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	token = j.tokens.Next()
	result, err := tx.ExecContext(ctx, spec.insert, spec.insertArgs(token, j.clock.Now())...)
	if err != nil {
		return "", false, fmt.Errorf("insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Conflict - row already exists, fetch the existing token
		if err := tx.QueryRowContext(ctx, spec.tokenQuery, spec.tokenArgs...).Scan(&token); err != nil {
			return "", false, fmt.Errorf("select existing: %w", err)
		}
		inserted = false
	} else {
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit: %w", err)
	}

	return token, inserted, nil
}
