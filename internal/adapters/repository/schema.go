package repository

// SchemaVersion is the version recorded in schema_version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS model_inputs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	features   TEXT NOT NULL CHECK (json_valid(features)),
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_model_inputs_created ON model_inputs(created_at);

CREATE TABLE IF NOT EXISTS model_outputs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	input_id    INTEGER NOT NULL REFERENCES model_inputs(id) ON DELETE CASCADE,
	prediction  INTEGER NOT NULL
		CONSTRAINT check_prediction_binary CHECK (prediction IN (0, 1)),
	probability REAL
		CONSTRAINT check_probability_range CHECK (probability IS NULL OR (probability >= 0 AND probability <= 1)),
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_model_outputs_input ON model_outputs(input_id);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`
