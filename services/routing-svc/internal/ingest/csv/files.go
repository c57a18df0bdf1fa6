package csv

import (
	"os"

	"transitroute/pkg/apperror"
	"transitroute/pkg/domain"
)

// LoadFiles opens nodesPath and edgesPath and parses them into records,
// for use by cmd/routing-svc's graph.source=csv bootstrap path.
func LoadFiles(nodesPath, edgesPath string) ([]domain.NodeRecord, []domain.EdgeRecord, error) {
	nodesFile, err := os.Open(nodesPath)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeInvalidParameter, "opening nodes CSV")
	}
	defer nodesFile.Close()

	nodes, err := LoadNodes(nodesFile)
	if err != nil {
		return nil, nil, err
	}

	edgesFile, err := os.Open(edgesPath)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeInvalidParameter, "opening edges CSV")
	}
	defer edgesFile.Close()

	edges, err := LoadEdges(edgesFile)
	if err != nil {
		return nil, nil, err
	}

	return nodes, edges, nil
}
