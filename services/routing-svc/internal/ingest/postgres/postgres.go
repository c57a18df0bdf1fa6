// Package postgres loads the transit graph's node and edge records from a
// Postgres nodes/edges schema (see migrations/00001_nodes_edges.sql),
// producing the same []domain.NodeRecord/[]domain.EdgeRecord shape the CSV
// adapter produces so domain.BuildGraph never has to know the source.
package postgres

import (
	"context"

	"transitroute/pkg/apperror"
	"transitroute/pkg/database"
	"transitroute/pkg/domain"
)

// Load reads every row of nodes and edges and returns the parsed records.
// It does not validate graph-level invariants (duplicate ids, dangling
// endpoints) - that is domain.BuildGraph's job. A query failure is wrapped
// in apperror.CodeInternal, since a reachable-but-broken database is an
// operational fault rather than a bad request.
func Load(ctx context.Context, db database.DB) ([]domain.NodeRecord, []domain.EdgeRecord, error) {
	nodes, err := loadNodes(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	edges, err := loadEdges(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	return nodes, edges, nil
}

func loadNodes(ctx context.Context, db database.DB) ([]domain.NodeRecord, error) {
	rows, err := db.Query(ctx, `SELECT id, name, lat, lon, kind FROM nodes`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "querying nodes table")
	}
	defer rows.Close()

	var records []domain.NodeRecord
	for rows.Next() {
		var nr domain.NodeRecord
		if err := rows.Scan(&nr.ID, &nr.Name, &nr.Lat, &nr.Lon, &nr.Kind); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "scanning node row")
		}
		records = append(records, nr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "iterating node rows")
	}

	return records, nil
}

func loadEdges(ctx context.Context, db database.DB) ([]domain.EdgeRecord, error) {
	rows, err := db.Query(ctx, `
		SELECT from_id, to_id, time_min, transfer, stairs, bad_pavement, flood_risk, mode
		FROM edges
	`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "querying edges table")
	}
	defer rows.Close()

	var records []domain.EdgeRecord
	for rows.Next() {
		var er domain.EdgeRecord
		if err := rows.Scan(
			&er.From, &er.To, &er.TimeMin,
			&er.Transfer, &er.Stairs, &er.BadPavement, &er.FloodRisk,
			&er.Mode,
		); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "scanning edge row")
		}
		records = append(records, er)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "iterating edge rows")
	}

	return records, nil
}
