package repository

import (
	"encoding/json"

	"ai_room_design/db"
	"ai_room_design/logger"
	"ai_room_design/models"
	"ai_room_design/picker"
)

// SaveDesignRun 保存一次设计请求记录
// queries和picks以JSON文本落库
func SaveDesignRun(run *models.DesignRun) error {
	queriesJSON, err := json.Marshal(run.Queries)
	if err != nil {
		return err
	}
	picksJSON, err := json.Marshal(run.Picks)
	if err != nil {
		return err
	}

	_, err = db.DB.Exec(`
		INSERT INTO design_runs (run_id, budget, style, notes, queries, picks, total_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())`,
		run.RunID, run.Budget, run.Style, run.Notes,
		string(queriesJSON), string(picksJSON), run.TotalCost)
	return err
}

// ListRecentRuns 获取最近的设计记录
func ListRecentRuns(limit int) ([]models.DesignRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := db.DB.Query(`
		SELECT run_id, budget, style, notes, queries, picks, total_cost,
			DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s')
		FROM design_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DesignRun, 0)
	for rows.Next() {
		var r models.DesignRun
		var queriesJSON, picksJSON string
		if err := rows.Scan(&r.RunID, &r.Budget, &r.Style, &r.Notes,
			&queriesJSON, &picksJSON, &r.TotalCost, &r.CreatedAt); err != nil {
			logger.Warn("设计记录扫描失败", "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(queriesJSON), &r.Queries); err != nil {
			r.Queries = []string{}
		}
		if err := json.Unmarshal([]byte(picksJSON), &r.Picks); err != nil {
			r.Picks = []picker.PickedProduct{}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRunsOlderThan 删除超过保留期的设计记录，返回删除行数
func DeleteRunsOlderThan(days int) (int64, error) {
	result, err := db.DB.Exec(
		`DELETE FROM design_runs WHERE created_at < DATE_SUB(NOW(), INTERVAL ? DAY)`, days)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
