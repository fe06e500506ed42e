// ABOUTME: SQL schema for the four record collections, per dialect.
// ABOUTME: SQLite keeps times as fixed-width UTC text; Postgres uses timestamptz.
package storage

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS weight_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recorded_at TEXT NOT NULL,
    weight REAL NOT NULL CHECK (weight > 0)
);

CREATE TABLE IF NOT EXISTS diet_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recorded_at TEXT NOT NULL,
    description TEXT NOT NULL,
    calories INTEGER NOT NULL CHECK (calories >= 0),
    protein_g REAL NOT NULL DEFAULT 0,
    carbs_g REAL NOT NULL DEFAULT 0,
    fat_g REAL NOT NULL DEFAULT 0,
    meal_type TEXT NOT NULL,
    is_ai_generated INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS fitness_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recorded_at TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes >= 0),
    calories_burned INTEGER NOT NULL CHECK (calories_burned >= 0)
);

CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    target_weight REAL,
    start_weight REAL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_weight_logs_user_date ON weight_logs(user_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_diet_logs_user_date ON diet_logs(user_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_fitness_logs_user_date ON fitness_logs(user_id, recorded_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS weight_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    weight DOUBLE PRECISION NOT NULL CHECK (weight > 0)
);

CREATE TABLE IF NOT EXISTS diet_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    description TEXT NOT NULL,
    calories INTEGER NOT NULL CHECK (calories >= 0),
    protein_g DOUBLE PRECISION NOT NULL DEFAULT 0,
    carbs_g DOUBLE PRECISION NOT NULL DEFAULT 0,
    fat_g DOUBLE PRECISION NOT NULL DEFAULT 0,
    meal_type TEXT NOT NULL,
    is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS fitness_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    activity_type TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes >= 0),
    calories_burned INTEGER NOT NULL CHECK (calories_burned >= 0)
);

CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    target_weight DOUBLE PRECISION,
    start_weight DOUBLE PRECISION,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_weight_logs_user_date ON weight_logs(user_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_diet_logs_user_date ON diet_logs(user_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_fitness_logs_user_date ON fitness_logs(user_id, recorded_at);
`
