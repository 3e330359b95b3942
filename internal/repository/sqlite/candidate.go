package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
)

func (r *SQLiteRepo) UpsertCandidate(ctx context.Context, c *models.CandidateProfile) error {
	if c == nil {
		return fmt.Errorf("candidate is nil")
	}

	outcomes, err := json.Marshal(orEmpty(c.Outcomes))
	if err != nil {
		return err
	}
	tools, err := json.Marshal(orEmpty(c.Tools))
	if err != nil {
		return err
	}
	industries, err := json.Marshal(orEmpty(c.Industries))
	if err != nil {
		return err
	}
	certs, err := json.Marshal(c.Certifications)
	if err != nil {
		return err
	}
	studies, err := json.Marshal(c.CaseStudies)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, `INSERT INTO candidate_profiles (expert_id, outcomes_json, tools_json, industries_json, weekly_hours, band_min, band_max, certifications_json, case_studies_json, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(expert_id) DO UPDATE SET outcomes_json=excluded.outcomes_json, tools_json=excluded.tools_json, industries_json=excluded.industries_json, weekly_hours=excluded.weekly_hours, band_min=excluded.band_min, band_max=excluded.band_max, certifications_json=excluded.certifications_json, case_studies_json=excluded.case_studies_json, updated=excluded.updated`,
		c.ExpertID, string(outcomes), string(tools), string(industries), c.WeeklyHours, c.BandMin, c.BandMax, string(certs), string(studies), now())

	return err
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, expertID int64) (*models.CandidateProfile, error) {
	row := r.conn.QueryRow(ctx, `SELECT expert_id, outcomes_json, tools_json, industries_json, weekly_hours, band_min, band_max, certifications_json, case_studies_json, updated FROM candidate_profiles WHERE expert_id = ?`, expertID)

	c, err := scanCandidate(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) ListCandidates(ctx context.Context) ([]models.CandidateProfile, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT expert_id, outcomes_json, tools_json, industries_json, weekly_hours, band_min, band_max, certifications_json, case_studies_json, updated FROM candidate_profiles ORDER BY expert_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CandidateProfile
	for rows.Next() {
		c, err := scanCandidate(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

func scanCandidate(scan func(dest ...any) error) (*models.CandidateProfile, error) {
	var c models.CandidateProfile
	var outcomes, tools, industries, certs, studies string
	if err := scan(&c.ExpertID, &outcomes, &tools, &industries, &c.WeeklyHours, &c.BandMin, &c.BandMax, &certs, &studies, &c.Updated); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(outcomes), &c.Outcomes); err != nil {
		return nil, fmt.Errorf("decode outcomes: %w", err)
	}
	if err := json.Unmarshal([]byte(tools), &c.Tools); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	if err := json.Unmarshal([]byte(industries), &c.Industries); err != nil {
		return nil, fmt.Errorf("decode industries: %w", err)
	}
	if err := json.Unmarshal([]byte(certs), &c.Certifications); err != nil {
		return nil, fmt.Errorf("decode certifications: %w", err)
	}
	if err := json.Unmarshal([]byte(studies), &c.CaseStudies); err != nil {
		return nil, fmt.Errorf("decode case studies: %w", err)
	}

	return &c, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
