package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"optimise-growth-tools/internal/models"
)

// SQLiteStore is the durable backend. Findings, recommendations, snapshot
// positions and the content preview are stored as JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and initializes the
// schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		website TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		keyword TEXT NOT NULL,
		position INTEGER,
		previous_position INTEGER,
		search_volume INTEGER NOT NULL DEFAULT 0,
		opportunity TEXT NOT NULL DEFAULT 'low',
		location TEXT NOT NULL DEFAULT '',
		last_updated TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_keywords_project ON keywords(project_id);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		keyword_ids TEXT NOT NULL,
		positions TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		website_url TEXT NOT NULL,
		conversion_goal TEXT NOT NULL,
		business_type TEXT NOT NULL,
		overall_score INTEGER NOT NULL,
		above_fold_score INTEGER NOT NULL,
		cta_score INTEGER NOT NULL,
		navigation_score INTEGER NOT NULL,
		content_score INTEGER NOT NULL,
		findings TEXT NOT NULL,
		recommendations TEXT NOT NULL,
		extracted_content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) GetProject(id int) (*models.Project, error) {
	p := models.Project{}
	err := s.db.QueryRow(`SELECT id, name, website, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Website, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) GetProjectByWebsite(website string) (*models.Project, error) {
	p := models.Project{}
	err := s.db.QueryRow(`SELECT id, name, website, created_at FROM projects WHERE website = ? LIMIT 1`, website).
		Scan(&p.ID, &p.Name, &p.Website, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) CreateProject(name, website string) (*models.Project, error) {
	now := time.Now()
	res, err := s.db.Exec(`INSERT INTO projects (name, website, created_at) VALUES (?, ?, ?)`, name, website, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Project{ID: int(id), Name: name, Website: website, CreatedAt: now}, nil
}

func scanKeyword(scan func(dest ...any) error) (models.Keyword, error) {
	var kw models.Keyword
	var pos, prev sql.NullInt64
	err := scan(&kw.ID, &kw.ProjectID, &kw.Keyword, &pos, &prev, &kw.SearchVolume, &kw.Opportunity, &kw.Location, &kw.LastUpdated)
	if err != nil {
		return kw, err
	}
	if pos.Valid {
		v := int(pos.Int64)
		kw.Position = &v
	}
	if prev.Valid {
		v := int(prev.Int64)
		kw.PreviousPosition = &v
	}
	return kw, nil
}

func (s *SQLiteStore) GetKeyword(id int) (*models.Keyword, error) {
	row := s.db.QueryRow(`SELECT id, project_id, keyword, position, previous_position, search_volume, opportunity, location, last_updated FROM keywords WHERE id = ?`, id)
	kw, err := scanKeyword(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

func (s *SQLiteStore) GetAllKeywords() ([]models.KeywordWithProject, error) {
	rows, err := s.db.Query(`
		SELECT k.id, k.project_id, k.keyword, k.position, k.previous_position,
		       k.search_volume, k.opportunity, k.location, k.last_updated,
		       p.id, p.name, p.website, p.created_at
		FROM keywords k JOIN projects p ON p.id = k.project_id
		ORDER BY k.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KeywordWithProject
	for rows.Next() {
		var kw models.Keyword
		var p models.Project
		var pos, prev sql.NullInt64
		if err := rows.Scan(&kw.ID, &kw.ProjectID, &kw.Keyword, &pos, &prev,
			&kw.SearchVolume, &kw.Opportunity, &kw.Location, &kw.LastUpdated,
			&p.ID, &p.Name, &p.Website, &p.CreatedAt); err != nil {
			return nil, err
		}
		if pos.Valid {
			v := int(pos.Int64)
			kw.Position = &v
		}
		if prev.Valid {
			v := int(prev.Int64)
			kw.PreviousPosition = &v
		}
		out = append(out, models.KeywordWithProject{Keyword: kw, Project: p})
	}
	return out, rows.Err()
}

func nullable(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *SQLiteStore) CreateKeywords(keywords []models.Keyword) ([]models.Keyword, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := make([]models.Keyword, 0, len(keywords))
	now := time.Now()
	for _, kw := range keywords {
		res, err := tx.Exec(`
			INSERT INTO keywords (project_id, keyword, position, previous_position, search_volume, opportunity, location, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			kw.ProjectID, kw.Keyword, nullable(kw.Position), nullable(kw.PreviousPosition),
			kw.SearchVolume, kw.Opportunity, kw.Location, now)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		kw.ID = int(id)
		kw.LastUpdated = now
		created = append(created, kw)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLiteStore) UpdateKeyword(id int, update KeywordUpdate) (*models.Keyword, error) {
	res, err := s.db.Exec(`
		UPDATE keywords SET position = ?, previous_position = ?, search_volume = ?, opportunity = ?, last_updated = ?
		WHERE id = ?`,
		nullable(update.Position), nullable(update.PreviousPosition),
		update.SearchVolume, update.Opportunity, time.Now(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetKeyword(id)
}

func (s *SQLiteStore) DeleteKeywords(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.Exec(`DELETE FROM keywords WHERE id IN (`+placeholders+`)`, args...)
	return err
}

func (s *SQLiteStore) ClearAllKeywords() error {
	_, err := s.db.Exec(`DELETE FROM keywords`)
	return err
}

func (s *SQLiteStore) CreateSnapshot(label string, keywordIDs []int, positions map[int]*int) (*models.Snapshot, error) {
	ids, err := json.Marshal(keywordIDs)
	if err != nil {
		return nil, err
	}
	pos, err := json.Marshal(positions)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	res, err := s.db.Exec(`INSERT INTO snapshots (label, keyword_ids, positions, created_at) VALUES (?, ?, ?, ?)`,
		label, string(ids), string(pos), now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		ID:         int(id),
		Label:      label,
		KeywordIDs: keywordIDs,
		Positions:  positions,
		CreatedAt:  now,
	}, nil
}

func (s *SQLiteStore) GetSnapshots() ([]models.Snapshot, error) {
	rows, err := s.db.Query(`SELECT id, label, keyword_ids, positions, created_at FROM snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var ids, pos string
		if err := rows.Scan(&snap.ID, &snap.Label, &ids, &pos, &snap.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ids), &snap.KeywordIDs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pos), &snap.Positions); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DashboardMetrics() (models.DashboardMetrics, error) {
	keywords, err := s.GetAllKeywords()
	if err != nil {
		return models.DashboardMetrics{}, err
	}
	return computeMetrics(keywords), nil
}

func (s *SQLiteStore) RankingDistribution() (models.RankingDistribution, error) {
	keywords, err := s.GetAllKeywords()
	if err != nil {
		return models.RankingDistribution{}, err
	}
	return computeDistribution(keywords), nil
}

func (s *SQLiteStore) OpportunityKeywords() ([]models.KeywordWithProject, error) {
	keywords, err := s.GetAllKeywords()
	if err != nil {
		return nil, err
	}
	return filterOpportunities(keywords), nil
}

func (s *SQLiteStore) CreateAudit(record models.AuditRecord) (*models.AuditRecord, error) {
	findings, err := json.Marshal(record.Findings)
	if err != nil {
		return nil, err
	}
	recs, err := json.Marshal(record.Recommendations)
	if err != nil {
		return nil, err
	}
	content, err := json.Marshal(record.ExtractedContent)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO audits (website_url, conversion_goal, business_type, overall_score, above_fold_score,
			cta_score, navigation_score, content_score, findings, recommendations, extracted_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.WebsiteURL, record.ConversionGoal, record.BusinessType,
		record.OverallScore, record.AboveFoldScore, record.CTAScore, record.NavigationScore, record.ContentScore,
		string(findings), string(recs), string(content), now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	record.ID = int(id)
	record.CreatedAt = now
	return &record, nil
}

func (s *SQLiteStore) GetAudit(id int) (*models.AuditRecord, error) {
	var rec models.AuditRecord
	var findings, recs, content string
	err := s.db.QueryRow(`
		SELECT id, website_url, conversion_goal, business_type, overall_score, above_fold_score,
		       cta_score, navigation_score, content_score, findings, recommendations, extracted_content, created_at
		FROM audits WHERE id = ?`, id).
		Scan(&rec.ID, &rec.WebsiteURL, &rec.ConversionGoal, &rec.BusinessType,
			&rec.OverallScore, &rec.AboveFoldScore, &rec.CTAScore, &rec.NavigationScore, &rec.ContentScore,
			&findings, &recs, &content, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(findings), &rec.Findings); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recs), &rec.Recommendations); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &rec.ExtractedContent); err != nil {
		return nil, err
	}
	return &rec, nil
}
