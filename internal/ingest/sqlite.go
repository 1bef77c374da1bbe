package ingest

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"demandest/internal/campaign"
)

// SQLiteTable is the table written by process-campaigns and read back by the
// other tools. It keeps the raw column text next to the derived values so a
// round trip loses nothing.
const SQLiteTable = "campaigns_cleaned"

// WriteSQLite replaces path with a fresh database holding the table records.
func WriteSQLite(path string, t *campaign.Table) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE "` + SQLiteTable + `" (
		row_id INTEGER PRIMARY KEY,
		country TEXT,
		campaign_name TEXT,
		category_name TEXT,
		description TEXT,
		date_start_raw TEXT,
		date_end_raw TEXT,
		demand_raw TEXT,
		date_start TEXT,
		date_end TEXT,
		demand REAL
	)`); err != nil {
		return err
	}

	stmt, err := db.Prepare(`INSERT INTO "` + SQLiteTable + `" (
		row_id, country, campaign_name, category_name, description,
		date_start_raw, date_end_raw, demand_raw, date_start, date_end, demand
	) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range t.Records {
		var dateStart, dateEnd, dem any
		if r.DateStart != nil {
			dateStart = r.DateStart.Format("2006-01-02")
		}
		if r.DateEnd != nil {
			dateEnd = r.DateEnd.Format("2006-01-02")
		}
		if r.Demand != nil {
			dem = *r.Demand
		}
		if _, err := stmt.Exec(
			r.ID, r.Country, r.CampaignName, r.Category, r.Description,
			r.DateStartRaw, r.DateEndRaw, r.DemandRaw, dateStart, dateEnd, dem,
		); err != nil {
			return err
		}
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_campaigns_cleaned_country ON campaigns_cleaned(country)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_cleaned_category ON campaigns_cleaned(category_name)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_cleaned_dates ON campaigns_cleaned(date_start, date_end)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

// LoadSQLite rebuilds a campaign table from a cleaned database.
func LoadSQLite(path string) (*campaign.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT row_id, country, campaign_name, category_name, description,
		date_start_raw, date_end_raw, demand_raw, date_start, date_end, demand
		FROM "` + SQLiteTable + `" ORDER BY row_id`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %v", SQLiteTable, err)
	}
	defer rows.Close()

	table := &campaign.Table{Columns: []string{
		campaign.ColCountry, campaign.ColCampaignName, campaign.ColCategoryName,
		campaign.ColDescription, campaign.ColDateStart, campaign.ColDateEnd, campaign.ColDemand,
	}}
	for rows.Next() {
		var r campaign.Record
		var dateStart, dateEnd sql.NullString
		var dem sql.NullFloat64
		if err := rows.Scan(
			&r.ID, &r.Country, &r.CampaignName, &r.Category, &r.Description,
			&r.DateStartRaw, &r.DateEndRaw, &r.DemandRaw, &dateStart, &dateEnd, &dem,
		); err != nil {
			return nil, err
		}
		if dateStart.Valid {
			r.DateStart = ParseDate(dateStart.String)
		}
		if dateEnd.Valid {
			r.DateEnd = ParseDate(dateEnd.String)
		}
		if dem.Valid {
			v := dem.Float64
			r.Demand = &v
		}
		table.Records = append(table.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
