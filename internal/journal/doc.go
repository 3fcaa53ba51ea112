// Package journal provides SQLite-backed durable storage for judgments,
// outcomes, and mapper definitions.
//
// The journal is an append-only record with:
//   - Judgments: decision judgments keyed by judgment id
//   - Outcomes: observed real-world results linked back to decisions
//   - Mappers: the mapper definitions that produced initial judgments
//
// Writes are idempotent: every insert uses ON CONFLICT DO NOTHING, so
// recording the same content-addressed row twice is a no-op that
// returns the original record token. This makes replaying a decision
// pipeline safe.
//
// Every row carries a UUIDv7 record token assigned at insert time.
// Tokens are time-sortable, and all list queries order by
// token ASC COLLATE BINARY so scans are deterministic across runs.
//
// Stored documents keep their exact wire JSON. The canonical encoding
// used for seals and ids rounds numbers to 10 significant digits and
// must never be used for storage: re-verifying a stored judgment needs
// the exact floats the operator produced.
//
// The calibration read path joins outcomes to the decisions they link
// to and grades each pair (well-calibrated, overconfident,
// underconfident, neutral) from the decision's T versus the outcome's
// observed T.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - single-writer pool: SQLite allows one writer at a time
package journal
