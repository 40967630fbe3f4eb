package repository

// submissionsSetName is the reserved set that owns every user-submitted card.
const submissionsSetName = "User Submissions"

// migrations run in order on every Open; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS card_set (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS card (
		id             INTEGER PRIMARY KEY,
		format_text    TEXT NOT NULL,
		is_black       INTEGER NOT NULL CHECK(is_black IN (0, 1)),
		set_id         INTEGER NOT NULL REFERENCES card_set(id) ON DELETE CASCADE,
		submitted_by   INTEGER,
		total_votes    INTEGER NOT NULL DEFAULT 0,
		average_rating REAL,
		UNIQUE(format_text, is_black)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_card_set_id ON card(set_id, id)`,
	`CREATE TABLE IF NOT EXISTS card_rating (
		user_id INTEGER NOT NULL,
		card_id INTEGER NOT NULL REFERENCES card(id) ON DELETE CASCADE,
		rating  REAL NOT NULL CHECK(rating >= 0 AND rating <= 1),
		PRIMARY KEY (user_id, card_id)
	)`,
	`CREATE TABLE IF NOT EXISTS card_combination_rating (
		user_id       INTEGER NOT NULL,
		black_card_id INTEGER NOT NULL REFERENCES card(id) ON DELETE CASCADE,
		white_card_id INTEGER NOT NULL REFERENCES card(id) ON DELETE CASCADE,
		ordinal       INTEGER NOT NULL CHECK(ordinal >= 0),
		rating        REAL NOT NULL CHECK(rating >= 0 AND rating <= 1),
		PRIMARY KEY (user_id, black_card_id, white_card_id, ordinal)
	)`,

	// Full-text indexes over card text and set names.
	`CREATE VIRTUAL TABLE IF NOT EXISTS card_fts USING fts5(
		format_text, content='card', content_rowid='id', tokenize='porter unicode61'
	)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS card_set_fts USING fts5(
		name, content='card_set', content_rowid='id', tokenize='porter unicode61'
	)`,
	`CREATE TRIGGER IF NOT EXISTS card_fts_ai AFTER INSERT ON card BEGIN
		INSERT INTO card_fts(rowid, format_text) VALUES (new.id, new.format_text);
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_fts_ad AFTER DELETE ON card BEGIN
		INSERT INTO card_fts(card_fts, rowid, format_text) VALUES ('delete', old.id, old.format_text);
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_fts_au AFTER UPDATE OF format_text ON card BEGIN
		INSERT INTO card_fts(card_fts, rowid, format_text) VALUES ('delete', old.id, old.format_text);
		INSERT INTO card_fts(rowid, format_text) VALUES (new.id, new.format_text);
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_set_fts_ai AFTER INSERT ON card_set BEGIN
		INSERT INTO card_set_fts(rowid, name) VALUES (new.id, new.name);
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_set_fts_ad AFTER DELETE ON card_set BEGIN
		INSERT INTO card_set_fts(card_set_fts, rowid, name) VALUES ('delete', old.id, old.name);
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_set_fts_au AFTER UPDATE OF name ON card_set BEGIN
		INSERT INTO card_set_fts(card_set_fts, rowid, name) VALUES ('delete', old.id, old.name);
		INSERT INTO card_set_fts(rowid, name) VALUES (new.id, new.name);
	END`,

	// Aggregates follow the rating table. Ratings are never deleted through
	// the API, so total_votes only grows there.
	`CREATE TRIGGER IF NOT EXISTS card_rating_ai AFTER INSERT ON card_rating BEGIN
		UPDATE card SET
			total_votes    = (SELECT COUNT(*) FROM card_rating WHERE card_id = new.card_id),
			average_rating = (SELECT AVG(rating) FROM card_rating WHERE card_id = new.card_id)
		WHERE id = new.card_id;
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_rating_au AFTER UPDATE OF rating ON card_rating BEGIN
		UPDATE card SET
			total_votes    = (SELECT COUNT(*) FROM card_rating WHERE card_id = new.card_id),
			average_rating = (SELECT AVG(rating) FROM card_rating WHERE card_id = new.card_id)
		WHERE id = new.card_id;
	END`,
	`CREATE TRIGGER IF NOT EXISTS card_rating_ad AFTER DELETE ON card_rating BEGIN
		UPDATE card SET
			total_votes    = (SELECT COUNT(*) FROM card_rating WHERE card_id = old.card_id),
			average_rating = (SELECT AVG(rating) FROM card_rating WHERE card_id = old.card_id)
		WHERE id = old.card_id;
	END`,

	`INSERT OR IGNORE INTO card_set (name) VALUES ('` + submissionsSetName + `')`,
}
