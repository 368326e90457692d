package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// sqliteMigrations is the ordered list of SQLite schema migrations.
// Each migration's version must be sequential starting from 1.
var sqliteMigrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE CHECK(length(trim(name)) BETWEEN 1 AND 100),
	color      TEXT NOT NULL DEFAULT '#3B82F6'
	           CHECK(length(color) = 7 AND color GLOB '#[0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f]'),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL CHECK(length(trim(title)) BETWEEN 1 AND 200),
	description TEXT CHECK(description IS NULL OR length(description) <= 1000),
	completed   INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	priority    TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('high', 'medium', 'low')),
	due_date    DATETIME,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_todos_category_id ON todos(category_id);
CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos(completed);
CREATE INDEX IF NOT EXISTS idx_todos_priority ON todos(priority);
CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date);
CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at);
CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_todos_completed_category
	ON todos(completed, category_id);

CREATE VIEW IF NOT EXISTS todo_stats AS
SELECT
	c.id   AS category_id,
	c.name AS category_name,
	COUNT(t.id) AS total,
	COALESCE(SUM(CASE WHEN t.completed = 1 THEN 1 ELSE 0 END), 0) AS completed,
	COALESCE(SUM(CASE WHEN t.id IS NOT NULL AND t.completed = 0 THEN 1 ELSE 0 END), 0) AS pending,
	COALESCE(SUM(CASE WHEN t.completed = 0 AND t.due_date < CURRENT_TIMESTAMP THEN 1 ELSE 0 END), 0) AS overdue
FROM categories c
LEFT JOIN todos t ON t.category_id = c.id
GROUP BY c.id, c.name;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
