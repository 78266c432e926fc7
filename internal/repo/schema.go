package repo

const Schema = `
CREATE TABLE IF NOT EXISTS albums (
	album_id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	disc_count INTEGER NOT NULL CHECK (disc_count > 0)
);

CREATE TABLE IF NOT EXISTS discs (
	album_id TEXT NOT NULL REFERENCES albums(album_id) ON DELETE CASCADE,
	disc_index INTEGER NOT NULL CHECK (disc_index > 0),
	track_count INTEGER NOT NULL CHECK (track_count > 0),
	PRIMARY KEY (album_id, disc_index)
);
`
