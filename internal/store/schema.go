package store

const schema = `
CREATE TABLE IF NOT EXISTS switch_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    from_version TEXT,
    to_version TEXT NOT NULL,
    formula TEXT NOT NULL,
    outcome TEXT NOT NULL,
    detail TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_switch_events_created ON switch_events(created_at);
CREATE INDEX IF NOT EXISTS idx_switch_events_outcome ON switch_events(outcome);
`
