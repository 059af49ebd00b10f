package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT NOT NULL,
	media_type  TEXT NOT NULL DEFAULT 'text',
	media_path  TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);

CREATE TABLE IF NOT EXISTS chunks (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id     INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index     INTEGER NOT NULL,
	chunk_type      TEXT NOT NULL,
	content         TEXT NOT NULL,
	embedding_input TEXT NOT NULL DEFAULT '',
	language        TEXT NOT NULL DEFAULT '',
	heading_path    TEXT NOT NULL DEFAULT '[]',
	start_line      INTEGER NOT NULL DEFAULT 0,
	end_line        INTEGER NOT NULL DEFAULT 0,
	metadata        TEXT NOT NULL DEFAULT '{}',
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_chunks_doc_index ON chunks(document_id, chunk_index);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
	content,
	content='chunks',
	content_rowid='id',
	tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
	INSERT INTO chunks_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;

CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.id, old.content);
	INSERT INTO chunks_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TABLE IF NOT EXISTS media_tasks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id  INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	media_path   TEXT NOT NULL,
	media_type   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	attempts     INTEGER NOT NULL DEFAULT 0,
	last_error   TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	claimed_at   DATETIME,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_media_tasks_status ON media_tasks(status, id);

CREATE TABLE IF NOT EXISTS schema_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// pragmas applied on every connection: WAL mode trades some write latency
// for concurrent readers, matching a single-writer/many-reader embedded
// database.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}
